package grid

// Visibility tracks which columns are displayed. It never affects search.
type Visibility struct {
	visible map[string]bool
	order   []string
}

// NewVisibility seeds visibility from each column's Hidden flag.
func NewVisibility[R any](reg *Registry[R]) *Visibility {
	v := &Visibility{visible: make(map[string]bool, reg.Len())}
	for _, c := range reg.Columns() {
		v.visible[c.Key] = !c.Hidden
		v.order = append(v.order, c.Key)
	}
	return v
}

// Visible reports whether key is displayed. Unknown keys are not.
func (v *Visibility) Visible(key string) bool {
	return v.visible[key]
}

// SetVisible shows or hides a known column.
func (v *Visibility) SetVisible(key string, visible bool) bool {
	if _, ok := v.visible[key]; !ok {
		return false
	}
	v.visible[key] = visible
	return true
}

// State returns a copy of the visibility map.
func (v *Visibility) State() map[string]bool {
	out := make(map[string]bool, len(v.visible))
	for k, b := range v.visible {
		out[k] = b
	}
	return out
}

// VisibleKeys returns the displayed keys in registry order.
func (v *Visibility) VisibleKeys() []string {
	var out []string
	for _, k := range v.order {
		if v.visible[k] {
			out = append(out, k)
		}
	}
	return out
}
