package grid

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNextSortToggleCycle(t *testing.T) {
	t.Parallel()

	var s SortSpec
	require.False(t, s.IsSorted())

	s = NextSort(s, "price")
	require.Equal(t, SortSpec{Key: "price", Direction: Asc}, s)
	s = NextSort(s, "price")
	require.Equal(t, SortSpec{Key: "price", Direction: Desc}, s)
	s = NextSort(s, "price")
	require.False(t, s.IsSorted())
	s = NextSort(s, "price")
	require.Equal(t, SortSpec{Key: "price", Direction: Asc}, s)

	s = NextSort(SortSpec{Key: "price", Direction: Desc}, "name")
	require.Equal(t, SortSpec{Key: "name", Direction: Asc}, s)
}

func TestSortSpecString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "none", SortSpec{}.String())
	require.Equal(t, "price desc", SortSpec{Key: "price", Direction: Desc}.String())
	require.Equal(t, "unknown(7)", Direction(7).String())
}

func TestApplySortUnsortedPassesThrough(t *testing.T) {
	t.Parallel()

	reg := productRegistry(t)
	rows := []product{{ID: 3}, {ID: 1}, {ID: 2}}
	out, err := ApplySort(rows, SortSpec{}, reg)
	require.NoError(t, err)
	require.Equal(t, []int{3, 1, 2}, ids(out))
}

func TestApplySortDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	reg := productRegistry(t)
	rows := []product{{ID: 3}, {ID: 1}, {ID: 2}}
	out, err := ApplySort(rows, SortSpec{Key: "id"}, reg)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, ids(out))
	require.Equal(t, []int{3, 1, 2}, ids(rows))
}

func TestApplySortIsStable(t *testing.T) {
	t.Parallel()

	reg := productRegistry(t)
	rows := []product{
		{ID: 1, Category: "B"},
		{ID: 2, Category: "A"},
		{ID: 3, Category: "b"},
		{ID: 4, Category: "a"},
		{ID: 5, Category: "A"},
	}
	out, err := ApplySort(rows, SortSpec{Key: "category", Direction: Asc}, reg)
	require.NoError(t, err)
	require.Equal(t, []int{2, 4, 5, 1, 3}, ids(out))

	out, err = ApplySort(rows, SortSpec{Key: "category", Direction: Desc}, reg)
	require.NoError(t, err)
	require.Equal(t, []int{1, 3, 2, 4, 5}, ids(out))
}

func TestApplySortNullsLastInBothDirections(t *testing.T) {
	t.Parallel()

	reg := productRegistry(t)
	rows := []product{
		{ID: 1, Stock: nil},
		{ID: 2, Stock: intp(5)},
		{ID: 3, Stock: nil},
		{ID: 4, Stock: intp(1)},
	}
	out, err := ApplySort(rows, SortSpec{Key: "stock", Direction: Asc}, reg)
	require.NoError(t, err)
	require.Equal(t, []int{4, 2, 1, 3}, ids(out))

	out, err = ApplySort(rows, SortSpec{Key: "stock", Direction: Desc}, reg)
	require.NoError(t, err)
	require.Equal(t, []int{2, 4, 1, 3}, ids(out))
}

func TestApplySortStringsIgnoreCase(t *testing.T) {
	t.Parallel()

	reg := productRegistry(t)
	rows := []product{{ID: 1, Name: "banana"}, {ID: 2, Name: "Apple"}, {ID: 3, Name: "cherry"}, {ID: 4, Name: "apricot"}}
	out, err := ApplySort(rows, SortSpec{Key: "name"}, reg)
	require.NoError(t, err)
	require.Equal(t, []int{2, 4, 1, 3}, ids(out))
}

func TestApplySortNumbersNaturally(t *testing.T) {
	t.Parallel()

	reg := productRegistry(t)
	rows := []product{{ID: 1, Price: 10}, {ID: 2, Price: 9.5}, {ID: 3, Price: 100}, {ID: 4, Price: -1}}
	out, err := ApplySort(rows, SortSpec{Key: "price"}, reg)
	require.NoError(t, err)
	require.Equal(t, []int{4, 2, 1, 3}, ids(out))
}

func TestApplySortNaturalColumn(t *testing.T) {
	t.Parallel()

	type file struct{ Name string }
	plain := MustRegistry(Column[file]{Key: "name", Value: Get(func(f file) any { return f.Name })})
	natural := MustRegistry(Column[file]{Key: "name", Natural: true, Value: Get(func(f file) any { return f.Name })})
	rows := []file{{"file10"}, {"file2"}, {"File1"}}

	names := func(fs []file) string {
		var out []string
		for _, f := range fs {
			out = append(out, f.Name)
		}
		return strings.Join(out, ",")
	}

	out, err := ApplySort(rows, SortSpec{Key: "name"}, natural)
	require.NoError(t, err)
	require.Equal(t, "File1,file2,file10", names(out))

	out, err = ApplySort(rows, SortSpec{Key: "name"}, plain)
	require.NoError(t, err)
	require.Equal(t, "File1,file10,file2", names(out))
}

func TestApplySortTimesAndCustomCompare(t *testing.T) {
	t.Parallel()

	type event struct {
		ID   int
		At   time.Time
		Size string
	}
	order := map[string]int{"S": 0, "M": 1, "L": 2}
	reg := MustRegistry(
		Column[event]{Key: "at", Value: Get(func(e event) any { return e.At })},
		Column[event]{Key: "size", Value: Get(func(e event) any { return e.Size }), Compare: func(a, b any) int {
			return order[a.(string)] - order[b.(string)]
		}},
	)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []event{
		{ID: 1, At: base.Add(2 * time.Hour), Size: "L"},
		{ID: 2, At: base, Size: "S"},
		{ID: 3, At: base.Add(time.Hour), Size: "M"},
	}

	out, err := ApplySort(rows, SortSpec{Key: "at"}, reg)
	require.NoError(t, err)
	require.Equal(t, []int{2, 3, 1}, []int{out[0].ID, out[1].ID, out[2].ID})

	out, err = ApplySort(rows, SortSpec{Key: "size", Direction: Desc}, reg)
	require.NoError(t, err)
	require.Equal(t, []int{1, 3, 2}, []int{out[0].ID, out[1].ID, out[2].ID})
}

func TestApplySortRejectsUnknownAndUnsortableColumns(t *testing.T) {
	t.Parallel()

	reg := MustRegistry(
		Column[product]{Key: "name", Value: Get(func(p product) any { return p.Name })},
		Column[product]{Key: "notes", NoSort: true, Value: Get(func(p product) any { return p.Color })},
	)
	_, err := ApplySort(catalog(3), SortSpec{Key: "nam"}, reg)
	require.ErrorIs(t, err, ErrUnknownColumn)
	require.Contains(t, err.Error(), `did you mean "name"`)

	_, err = ApplySort(catalog(3), SortSpec{Key: "notes"}, reg)
	require.ErrorIs(t, err, ErrNotSortable)
}

func TestApplySortPropagatesAccessorErrors(t *testing.T) {
	t.Parallel()

	reg := MustRegistry(Column[product]{
		Key: "broken",
		Value: func(p product) (any, error) {
			if p.ID == 3 {
				return nil, errBoom
			}
			return p.ID, nil
		},
	})
	out, err := ApplySort(catalog(4), SortSpec{Key: "broken"}, reg)
	require.ErrorIs(t, err, errBoom)
	require.Nil(t, out)
}
