package grid

import "strings"

// ApplySearch keeps the rows where any searchable column contains query,
// ignoring case. A blank query returns rows unchanged.
func ApplySearch[R any](rows []R, query string, reg *Registry[R]) ([]R, error) {
	if strings.TrimSpace(query) == "" {
		return rows, nil
	}
	q := strings.ToLower(query)
	cols := reg.searchable()

	out := make([]R, 0, len(rows))
	for i, r := range rows {
		ok, err := matchesSearch(r, i, q, cols)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func matchesSearch[R any](r R, index int, q string, cols []Column[R]) (bool, error) {
	for _, c := range cols {
		v, err := c.Value(r)
		if err != nil {
			return false, &AccessorError{Column: c.Key, Index: index, Err: err}
		}
		if IsNull(v) {
			continue
		}
		if strings.Contains(lowerFormat(v), q) {
			return true, nil
		}
	}
	return false, nil
}
