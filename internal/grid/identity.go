package grid

import (
	"fmt"
	"reflect"
)

// IdentityFunc derives the row identity of a record at a position in the dataset.
type IdentityFunc[R any] func(rec R, index int) (any, error)

// Identifier is implemented by records that know their own identity.
type Identifier interface {
	RowID() any
}

// DefaultIdentity resolves the identity of rec using, in order: an
// Identifier implementation, an "id" map entry, an exported ID struct field.
// A missing or nil identity falls back to the positional index.
func DefaultIdentity[R any](rec R, index int) (any, error) {
	if id, ok := lookupID(rec); ok {
		return id, nil
	}
	return index, nil
}

func lookupID(rec any) (any, bool) {
	if rec == nil {
		return nil, false
	}
	if idr, ok := rec.(Identifier); ok {
		return defined(idr.RowID())
	}
	switch m := rec.(type) {
	case map[string]any:
		id, ok := m["id"]
		if !ok {
			return nil, false
		}
		return defined(id)
	case map[string]string:
		id, ok := m["id"]
		return id, ok
	}

	v := reflect.ValueOf(rec)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, false
	}
	f := v.FieldByName("ID")
	if !f.IsValid() || !f.CanInterface() {
		return nil, false
	}
	return defined(f.Interface())
}

// defined dereferences pointer ids and reports false for nil ones.
func defined(id any) (any, bool) {
	if id == nil {
		return nil, false
	}
	v := reflect.ValueOf(id)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	return v.Interface(), true
}

// rowIndex maps identities to dataset positions for one dataset snapshot.
type rowIndex struct {
	ids  []any
	byID map[any]int
}

func buildIndex[R any](rows []R, resolve IdentityFunc[R]) (*rowIndex, error) {
	idx := &rowIndex{
		ids:  make([]any, len(rows)),
		byID: make(map[any]int, len(rows)),
	}
	for i, r := range rows {
		id, err := resolve(r, i)
		if err != nil {
			return nil, &RowIdentityError{Index: i, Err: err}
		}
		if id == nil {
			return nil, &RowIdentityError{Index: i, Err: fmt.Errorf("resolver returned nil")}
		}
		if !reflect.TypeOf(id).Comparable() {
			return nil, &RowIdentityError{Index: i, ID: id, Err: errUncomparableID}
		}
		if prev, dup := idx.byID[id]; dup {
			return nil, &RowIdentityError{Index: i, ID: id, Err: fmt.Errorf("%w %v (also at index %d)", errDuplicateID, id, prev)}
		}
		idx.ids[i] = id
		idx.byID[id] = i
	}
	return idx, nil
}
