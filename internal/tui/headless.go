package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/jask/jaskgrid/internal/export"
	"github.com/jask/jaskgrid/internal/grid"
)

// Query is a non-interactive ledger query.
type Query struct {
	Search   string
	Category string
	// Sort is "key" or "key:asc" / "key:desc".
	Sort string
	// Columns lists the columns to write, output in registry order. Empty
	// keeps the default visible set.
	Columns []string
	// Page selects one page of PageSize rows; zero writes every match.
	Page     int
	PageSize int
}

// ParseSort reads "key[:asc|:desc]".
func ParseSort(s string) (grid.SortSpec, error) {
	if s == "" {
		return grid.SortSpec{}, nil
	}
	k, dir, _ := strings.Cut(s, ":")
	spec := grid.SortSpec{Key: k, Direction: grid.Asc}
	switch strings.ToLower(dir) {
	case "", "asc":
	case "desc":
		spec.Direction = grid.Desc
	default:
		return grid.SortSpec{}, fmt.Errorf("sort direction %q: want asc or desc", dir)
	}
	return spec, nil
}

// ExportLedger runs q over rows and writes the matches as csv or yaml.
func ExportLedger(w io.Writer, rows []Row, q Query, format string) error {
	reg, err := Columns()
	if err != nil {
		return err
	}
	v := grid.New(reg, grid.Options{PageSize: q.PageSize})
	v.SetData(rows)
	v.SetSearch(q.Search)
	if q.Category != "" {
		v.SetFilter(ColCategory, q.Category)
	}
	spec, err := ParseSort(q.Sort)
	if err != nil {
		return err
	}
	if err := v.SetSort(spec); err != nil {
		return err
	}
	if len(q.Columns) > 0 {
		for _, c := range reg.Columns() {
			if err := v.SetColumnVisible(c.Key, false); err != nil {
				return err
			}
		}
		for _, k := range q.Columns {
			if err := v.SetColumnVisible(strings.TrimSpace(k), true); err != nil {
				return err
			}
		}
	}
	if q.Page > 0 {
		v.SetPage(q.Page)
	}

	dv, err := v.Derive()
	if err != nil {
		return err
	}
	out := dv.FilteredSorted
	if q.Page > 0 {
		out = dv.PageRows
	}
	switch format {
	case "csv":
		return export.CSV(w, dv.Columns, out)
	case "yaml":
		return export.YAML(w, dv.Columns, out)
	}
	return fmt.Errorf("unknown export format %q", format)
}
