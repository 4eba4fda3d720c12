package grid

import (
	"maps"
	"reflect"
	"slices"
)

// FilterState maps column keys to a required value or a set of accepted values.
type FilterState map[string]any

// Active reports whether v restricts rows. Nil, "" and empty slices are inert.
func Active(v any) bool {
	if IsNull(v) {
		return false
	}
	d := deref(v)
	if s, ok := d.(string); ok {
		return s != ""
	}
	rv := reflect.ValueOf(d)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return rv.Len() > 0
	}
	return true
}

// ownOperand copies slice operands so later changes by the caller cannot
// alter stored filter state.
func ownOperand(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice || rv.IsNil() {
		return v
	}
	out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
	reflect.Copy(out, rv)
	return out.Interface()
}

// Clone returns a shallow copy holding only the active entries.
func (f FilterState) Clone() FilterState {
	out := make(FilterState, len(f))
	for k, v := range f {
		if Active(v) {
			out[k] = v
		}
	}
	return out
}

// Keys returns the active filter keys in sorted order.
func (f FilterState) Keys() []string {
	return slices.Sorted(maps.Keys(f.Clone()))
}

type activeFilter[R any] struct {
	col     Column[R]
	operand any
}

// ApplyFilters keeps the rows satisfying every active entry of state.
// Entries whose key has no column are ignored.
func ApplyFilters[R any](rows []R, state FilterState, reg *Registry[R]) ([]R, error) {
	var active []activeFilter[R]
	for _, key := range state.Keys() {
		col, ok := reg.Column(key)
		if !ok {
			continue
		}
		active = append(active, activeFilter[R]{col: col, operand: state[key]})
	}
	if len(active) == 0 {
		return rows, nil
	}

	out := make([]R, 0, len(rows))
	for i, r := range rows {
		keep := true
		for _, f := range active {
			v, err := f.col.Value(r)
			if err != nil {
				return nil, &AccessorError{Column: f.col.Key, Index: i, Err: err}
			}
			if !matchesFilter(v, f.operand) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, r)
		}
	}
	return out, nil
}

func matchesFilter(v, operand any) bool {
	rv := reflect.ValueOf(operand)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		if _, isBytes := operand.([]byte); !isBytes {
			for i := 0; i < rv.Len(); i++ {
				if equalValues(v, rv.Index(i).Interface()) {
					return true
				}
			}
			return false
		}
	}
	return equalValues(v, operand)
}
