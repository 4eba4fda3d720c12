package repository

import (
	"context"
	"strings"
)

// CategoryRepo handles categories.
type CategoryRepo struct {
	db Querier
}

func NewCategoryRepo(db Querier) *CategoryRepo {
	return &CategoryRepo{db: db}
}

func (r *CategoryRepo) Upsert(ctx context.Context, c Category) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO categories(id, parent_id, name, icon, sort_order)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	 parent_id=excluded.parent_id,
	 name=excluded.name,
	 icon=excluded.icon,
	 sort_order=excluded.sort_order;
	`, c.ID, c.ParentID, c.Name, c.Icon, c.SortOrder)
	return err
}

func (r *CategoryRepo) List(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, parent_id, name, icon, sort_order FROM categories ORDER BY sort_order, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.ParentID, &c.Name, &c.Icon, &c.SortOrder); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Paths maps category ids to their display path, e.g. "Food > Groceries".
func (r *CategoryRepo) Paths(ctx context.Context) (map[string]string, error) {
	cats, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}
	out := make(map[string]string, len(cats))
	for _, c := range cats {
		parts := []string{c.Name}
		seen := map[string]bool{c.ID: true}
		for p := c.ParentID; p != nil && !seen[*p]; {
			parent, ok := byID[*p]
			if !ok {
				break
			}
			seen[parent.ID] = true
			parts = append([]string{parent.Name}, parts...)
			p = parent.ParentID
		}
		out[c.ID] = strings.Join(parts, " > ")
	}
	return out, nil
}
