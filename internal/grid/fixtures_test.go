package grid

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type product struct {
	ID       int
	Name     string
	Category string
	Color    string
	Price    float64
	Stock    *int
}

func intp(n int) *int { return &n }

func productRegistry(t *testing.T) *Registry[product] {
	t.Helper()
	reg, err := NewBuilder[product]().
		Field("id", "ID", func(p product) any { return p.ID }).
		Field("name", "Name", func(p product) any { return p.Name }).
		Field("category", "Category", func(p product) any { return p.Category }).
		Field("color", "Color", func(p product) any { return p.Color }).
		Field("price", "Price", func(p product) any { return p.Price }).
		Column(Column[product]{
			Key:    "stock",
			Header: "Stock",
			Value:  Get(func(p product) any { return p.Stock }),
			Hidden: true,
		}).
		Build()
	require.NoError(t, err)
	return reg
}

// catalog returns n products with ids 1..n. Odd ids are category A.
func catalog(n int) []product {
	out := make([]product, 0, n)
	for i := 1; i <= n; i++ {
		cat := "B"
		if i%2 == 1 {
			cat = "A"
		}
		color := "red"
		if i <= 20 {
			color = "blue"
		}
		out = append(out, product{
			ID:       i,
			Name:     fmt.Sprintf("Item %02d", i),
			Category: cat,
			Color:    color,
			Price:    float64(i) * 1.5,
			Stock:    intp(i % 4),
		})
	}
	return out
}

func ids(rows []product) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

var errBoom = errors.New("boom")

// manualScheduler fires timers only when told to.
type manualScheduler struct {
	mu      sync.Mutex
	pending []*manualTimer
}

type manualTimer struct {
	d    time.Duration
	fn   func()
	done bool
}

func (s *manualScheduler) AfterFunc(d time.Duration, fn func()) CancelFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{d: d, fn: fn}
	s.pending = append(s.pending, t)
	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if t.done {
			return false
		}
		t.done = true
		return true
	}
}

// Fire runs every live timer and returns how many ran.
func (s *manualScheduler) Fire() int {
	s.mu.Lock()
	var run []*manualTimer
	for _, t := range s.pending {
		if !t.done {
			t.done = true
			run = append(run, t)
		}
	}
	s.pending = nil
	s.mu.Unlock()
	for _, t := range run {
		t.fn()
	}
	return len(run)
}

// Live returns the number of scheduled timers that have neither fired nor been cancelled.
func (s *manualScheduler) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.pending {
		if !t.done {
			n++
		}
	}
	return n
}
