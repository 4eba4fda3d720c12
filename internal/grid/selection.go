package grid

// CheckState is the ternary state of a "select all" control.
type CheckState int

const (
	Unchecked CheckState = iota
	Indeterminate
	Checked
)

func (c CheckState) String() string {
	switch c {
	case Checked:
		return "checked"
	case Indeterminate:
		return "indeterminate"
	default:
		return "unchecked"
	}
}

// Selection is a set of row identities kept in insertion order.
// It is independent of which rows are currently visible.
type Selection struct {
	ids   map[any]struct{}
	order []any
}

func NewSelection() *Selection {
	return &Selection{ids: make(map[any]struct{})}
}

// Contains reports whether id is selected.
func (s *Selection) Contains(id any) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected ids.
func (s *Selection) Len() int { return len(s.ids) }

// Select adds id.
func (s *Selection) Select(id any) {
	if s.Contains(id) {
		return
	}
	s.ids[id] = struct{}{}
	s.order = append(s.order, id)
}

// Deselect removes id.
func (s *Selection) Deselect(id any) {
	if !s.Contains(id) {
		return
	}
	delete(s.ids, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Toggle flips the membership of id.
func (s *Selection) Toggle(id any) {
	if s.Contains(id) {
		s.Deselect(id)
		return
	}
	s.Select(id)
}

// AllSelected reports whether ids is non-empty and fully selected.
func (s *Selection) AllSelected(ids []any) bool {
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		if !s.Contains(id) {
			return false
		}
	}
	return true
}

// SomeSelected reports whether at least one of ids is selected.
func (s *Selection) SomeSelected(ids []any) bool {
	for _, id := range ids {
		if s.Contains(id) {
			return true
		}
	}
	return false
}

// State returns the check state of a control covering ids.
func (s *Selection) State(ids []any) CheckState {
	switch {
	case s.AllSelected(ids):
		return Checked
	case s.SomeSelected(ids):
		return Indeterminate
	default:
		return Unchecked
	}
}

// ToggleAll deselects ids when all of them are selected, otherwise selects all of them.
func (s *Selection) ToggleAll(ids []any) {
	if s.AllSelected(ids) {
		for _, id := range ids {
			s.Deselect(id)
		}
		return
	}
	for _, id := range ids {
		s.Select(id)
	}
}

// IDs returns the selected ids in selection order.
func (s *Selection) IDs() []any {
	out := make([]any, len(s.order))
	copy(out, s.order)
	return out
}

// Clear empties the selection.
func (s *Selection) Clear() {
	clear(s.ids)
	s.order = s.order[:0]
}

// Retain keeps the ids for which keep returns true and returns how many were dropped.
func (s *Selection) Retain(keep func(id any) bool) int {
	kept := s.order[:0]
	dropped := 0
	for _, id := range s.order {
		if keep(id) {
			kept = append(kept, id)
			continue
		}
		delete(s.ids, id)
		dropped++
	}
	s.order = kept
	return dropped
}
