package grid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyFiltersScalarAndSet(t *testing.T) {
	t.Parallel()

	reg := productRegistry(t)
	rows := catalog(10)

	out, err := ApplyFilters(rows, FilterState{"category": "A"}, reg)
	require.NoError(t, err)
	require.Equal(t, []int{1, 3, 5, 7, 9}, ids(out))

	out, err = ApplyFilters(rows, FilterState{"id": []int{2, 4, 11}}, reg)
	require.NoError(t, err)
	require.Equal(t, []int{2, 4}, ids(out))

	out, err = ApplyFilters(rows, FilterState{"category": []string{"A", "B"}}, reg)
	require.NoError(t, err)
	require.Len(t, out, 10)
}

func TestApplyFiltersCombinesWithAnd(t *testing.T) {
	t.Parallel()

	reg := productRegistry(t)
	out, err := ApplyFilters(catalog(30), FilterState{"category": "B", "color": "red"}, reg)
	require.NoError(t, err)
	require.Equal(t, []int{22, 24, 26, 28, 30}, ids(out))
}

func TestApplyFiltersIgnoresInertAndUnknownEntries(t *testing.T) {
	t.Parallel()

	reg := productRegistry(t)
	rows := catalog(6)
	state := FilterState{
		"category":  nil,
		"color":     "",
		"name":      []string{},
		"warehouse": "north",
	}
	out, err := ApplyFilters(rows, state, reg)
	require.NoError(t, err)
	require.Equal(t, rows, out)
}

func TestApplyFiltersComparesNumbersAcrossKinds(t *testing.T) {
	t.Parallel()

	reg := productRegistry(t)
	out, err := ApplyFilters(catalog(6), FilterState{"price": 3}, reg)
	require.NoError(t, err)
	require.Equal(t, []int{2}, ids(out))

	out, err = ApplyFilters(catalog(6), FilterState{"stock": 1}, reg)
	require.NoError(t, err)
	require.Equal(t, []int{1, 5}, ids(out))
}

func TestActive(t *testing.T) {
	t.Parallel()

	var nilSlice []string
	empty := ""
	require.False(t, Active(nil))
	require.False(t, Active(""))
	require.False(t, Active(&empty))
	require.False(t, Active(nilSlice))
	require.False(t, Active([]int{}))
	require.True(t, Active(0))
	require.True(t, Active(false))
	require.True(t, Active("x"))
	require.True(t, Active([]string{"a"}))
}

func TestFilterStateKeysAndClone(t *testing.T) {
	t.Parallel()

	f := FilterState{"b": 1, "a": "x", "c": ""}
	require.Equal(t, []string{"a", "b"}, f.Keys())
	require.Equal(t, FilterState{"a": "x", "b": 1}, f.Clone())
}

func TestApplyFiltersPropagatesAccessorErrors(t *testing.T) {
	t.Parallel()

	reg := MustRegistry(Column[product]{
		Key:   "broken",
		Value: func(p product) (any, error) { return nil, errBoom },
	})
	_, err := ApplyFilters(catalog(2), FilterState{"broken": "x"}, reg)
	require.ErrorIs(t, err, errBoom)
}
