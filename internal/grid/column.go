package grid

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Align is a presentation hint carried by a column.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Accessor reads one field of a record.
type Accessor[R any] func(R) (any, error)

// Get adapts an accessor that cannot fail.
func Get[R any](fn func(R) any) Accessor[R] {
	if fn == nil {
		return nil
	}
	return func(r R) (any, error) { return fn(r), nil }
}

// Column describes how to read, search and compare one field of R.
type Column[R any] struct {
	Key    string
	Header string
	Value  Accessor[R]

	NoSort   bool // excluded from sort requests
	NoSearch bool // excluded from the search stage
	Hidden   bool // initial visibility

	Align Align
	Width int

	// Natural orders strings so that "item2" sorts before "item10".
	Natural bool
	// Compare overrides the default ordering of two non-null values.
	Compare func(a, b any) int
}

// Sortable reports whether sort requests are accepted for the column.
func (c Column[R]) Sortable() bool { return !c.NoSort }

// Searchable reports whether the search stage considers the column.
func (c Column[R]) Searchable() bool { return !c.NoSearch }

// Label returns the header, falling back to the key.
func (c Column[R]) Label() string {
	if c.Header != "" {
		return c.Header
	}
	return c.Key
}

// Registry is an immutable, validated, ordered set of columns.
type Registry[R any] struct {
	cols  []Column[R]
	index map[string]int
}

// NewRegistry validates cols and returns a registry preserving their order.
func NewRegistry[R any](cols ...Column[R]) (*Registry[R], error) {
	reg := &Registry[R]{
		cols:  make([]Column[R], 0, len(cols)),
		index: make(map[string]int, len(cols)),
	}
	for _, c := range cols {
		if strings.TrimSpace(c.Key) == "" {
			return nil, &ConfigError{Reason: "column key is empty"}
		}
		if _, dup := reg.index[c.Key]; dup {
			return nil, &ConfigError{Key: c.Key, Reason: "duplicate key"}
		}
		if c.Value == nil {
			return nil, &ConfigError{Key: c.Key, Reason: "missing value accessor"}
		}
		reg.index[c.Key] = len(reg.cols)
		reg.cols = append(reg.cols, c)
	}
	return reg, nil
}

// MustRegistry is like NewRegistry but panics on an invalid configuration.
func MustRegistry[R any](cols ...Column[R]) *Registry[R] {
	reg, err := NewRegistry(cols...)
	if err != nil {
		panic(err)
	}
	return reg
}

// Builder accumulates columns for a Registry.
type Builder[R any] struct {
	cols []Column[R]
}

func NewBuilder[R any]() *Builder[R] { return &Builder[R]{} }

// Column appends a column.
func (b *Builder[R]) Column(c Column[R]) *Builder[R] {
	b.cols = append(b.cols, c)
	return b
}

// Field appends a column whose accessor cannot fail.
func (b *Builder[R]) Field(key, header string, fn func(R) any) *Builder[R] {
	return b.Column(Column[R]{Key: key, Header: header, Value: Get(fn)})
}

// Build validates the accumulated columns.
func (b *Builder[R]) Build() (*Registry[R], error) {
	return NewRegistry(b.cols...)
}

// Len returns the number of columns.
func (r *Registry[R]) Len() int { return len(r.cols) }

// Columns returns the columns in registration order.
func (r *Registry[R]) Columns() []Column[R] {
	out := make([]Column[R], len(r.cols))
	copy(out, r.cols)
	return out
}

// Column looks a column up by key.
func (r *Registry[R]) Column(key string) (Column[R], bool) {
	i, ok := r.index[key]
	if !ok {
		return Column[R]{}, false
	}
	return r.cols[i], true
}

// Keys returns the column keys in registration order.
func (r *Registry[R]) Keys() []string {
	keys := make([]string, len(r.cols))
	for i, c := range r.cols {
		keys[i] = c.Key
	}
	return keys
}

func (r *Registry[R]) searchable() []Column[R] {
	out := make([]Column[R], 0, len(r.cols))
	for _, c := range r.cols {
		if c.Searchable() {
			out = append(out, c)
		}
	}
	return out
}

// Suggest returns the registered key closest to key, if any is close enough
// to be a plausible typo.
func (r *Registry[R]) Suggest(key string) (string, bool) {
	needle := strings.ToLower(key)
	best, bestDist := "", -1
	for _, c := range r.cols {
		d := levenshtein.ComputeDistance(needle, strings.ToLower(c.Key))
		if bestDist < 0 || d < bestDist {
			best, bestDist = c.Key, d
		}
	}
	if bestDist < 0 || best == key {
		return "", false
	}
	maxlen := len(needle)
	if len(best) > maxlen {
		maxlen = len(best)
	}
	if float64(bestDist)/float64(maxlen) >= 0.4 {
		return "", false
	}
	return best, true
}
