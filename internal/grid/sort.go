package grid

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/fvbommel/sortorder"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Direction specifies the direction of sorting.
type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	switch d {
	case Asc:
		return "asc"
	case Desc:
		return "desc"
	default:
		return fmt.Sprintf("unknown(%d)", int(d))
	}
}

// SortSpec is the single active sort. The zero value means unsorted.
type SortSpec struct {
	Key       string
	Direction Direction
}

// IsSorted returns true if this spec represents an active sort.
func (s SortSpec) IsSorted() bool { return s.Key != "" }

func (s SortSpec) String() string {
	if !s.IsSorted() {
		return "none"
	}
	return s.Key + " " + s.Direction.String()
}

// NextSort advances the sort toggle for a request on key:
// none -> asc -> desc -> none on the same key, asc on any other key.
func NextSort(cur SortSpec, key string) SortSpec {
	if cur.Key != key {
		return SortSpec{Key: key, Direction: Asc}
	}
	if cur.Direction == Asc {
		return SortSpec{Key: key, Direction: Desc}
	}
	return SortSpec{}
}

type sortEntry[R any] struct {
	row  R
	val  any
	null bool
}

// ApplySort returns a stably sorted copy of rows. Null values sort last in
// both directions. An unsorted spec returns rows unchanged.
func ApplySort[R any](rows []R, spec SortSpec, reg *Registry[R]) ([]R, error) {
	if !spec.IsSorted() {
		return rows, nil
	}
	col, ok := reg.Column(spec.Key)
	if !ok {
		return nil, unknownColumn(reg, spec.Key)
	}
	if !col.Sortable() {
		return nil, fmt.Errorf("%w: %q", ErrNotSortable, spec.Key)
	}

	entries := make([]sortEntry[R], len(rows))
	for i, r := range rows {
		v, err := col.Value(r)
		if err != nil {
			return nil, &AccessorError{Column: col.Key, Index: i, Err: err}
		}
		entries[i] = sortEntry[R]{row: r, val: deref(v), null: IsNull(v)}
	}

	cmpFn := comparator(col)
	slices.SortStableFunc(entries, func(a, b sortEntry[R]) int {
		switch {
		case a.null && b.null:
			return 0
		case a.null:
			return 1
		case b.null:
			return -1
		}
		c := cmpFn(a.val, b.val)
		if spec.Direction == Desc {
			return -c
		}
		return c
	})

	out := make([]R, len(entries))
	for i, e := range entries {
		out[i] = e.row
	}
	return out, nil
}

// comparator returns the ordering used for non-null values of col.
func comparator[R any](col Column[R]) func(a, b any) int {
	if col.Compare != nil {
		return col.Compare
	}
	coll := collate.New(language.Und, collate.IgnoreCase)
	return func(a, b any) int {
		return compareValues(a, b, col.Natural, coll)
	}
}

func compareValues(a, b any, natural bool, coll *collate.Collator) int {
	if sa, ok := stringValue(a); ok {
		if sb, ok := stringValue(b); ok {
			if natural {
				return naturalCompare(strings.ToLower(sa), strings.ToLower(sb))
			}
			return coll.CompareString(sa, sb)
		}
	}
	if c, ok := compareNumbers(a, b); ok {
		return c
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			default:
				return 1
			}
		}
	}
	return coll.CompareString(Format(a), Format(b))
}

func stringValue(v any) (string, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

func naturalCompare(a, b string) int {
	switch {
	case sortorder.NaturalLess(a, b):
		return -1
	case sortorder.NaturalLess(b, a):
		return 1
	default:
		return 0
	}
}

func compareNumbers(a, b any) (int, bool) {
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if isSigned(ra.Kind()) && isSigned(rb.Kind()) {
		return cmp.Compare(ra.Int(), rb.Int()), true
	}
	if isUnsigned(ra.Kind()) && isUnsigned(rb.Kind()) {
		return cmp.Compare(ra.Uint(), rb.Uint()), true
	}
	x, okA := number(a)
	y, okB := number(b)
	if !okA || !okB {
		return 0, false
	}
	return cmp.Compare(x, y), true
}

func isSigned(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUnsigned(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}
