package grid

import "strconv"

// PaginationState is the page size and the 1-based current page.
type PaginationState struct {
	PageSize    int
	CurrentPage int
}

// Page is one slice of an ordered row set.
type Page[R any] struct {
	Rows       []R
	TotalPages int
}

// TotalPages returns ceil(n/size), or 0 for an empty set.
func TotalPages(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// ClampPage moves page into [1, totalPages], or to 1 when there are no pages.
func ClampPage(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// Paginate returns the rows of page (1-based). Pages past the end are empty.
func Paginate[R any](rows []R, size, page int) Page[R] {
	total := TotalPages(len(rows), size)
	if total == 0 || page < 1 || page > total {
		return Page[R]{Rows: []R{}, TotalPages: total}
	}
	start := (page - 1) * size
	end := min(start+size, len(rows))
	return Page[R]{Rows: rows[start:end:end], TotalPages: total}
}

// maxPlainPages is the largest page count rendered without ellipses.
const maxPlainPages = 7

// PageItem is one entry of a compact pager: a page number or an ellipsis.
type PageItem struct {
	Number   int
	Ellipsis bool
}

func (p PageItem) String() string {
	if p.Ellipsis {
		return "..."
	}
	return strconv.Itoa(p.Number)
}

// PageNumbers builds a bounded-width pager around current.
func PageNumbers(totalPages, current int) []PageItem {
	if totalPages <= 0 {
		return nil
	}
	if totalPages <= maxPlainPages {
		out := make([]PageItem, totalPages)
		for i := range out {
			out[i] = PageItem{Number: i + 1}
		}
		return out
	}

	out := []PageItem{{Number: 1}}
	if current > 3 {
		out = append(out, PageItem{Ellipsis: true})
	}
	for n := max(2, current-1); n <= min(totalPages-1, current+1); n++ {
		out = append(out, PageItem{Number: n})
	}
	if current < totalPages-2 {
		out = append(out, PageItem{Ellipsis: true})
	}
	return append(out, PageItem{Number: totalPages})
}

// PageLabels renders PageNumbers as strings.
func PageLabels(totalPages, current int) []string {
	items := PageNumbers(totalPages, current)
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.String()
	}
	return out
}
