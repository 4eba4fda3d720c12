package grid

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type keyed struct{ key string }

func (k keyed) RowID() any { return k.key }

type pointerID struct {
	ID *string
}

type noID struct {
	Name string
}

func TestDefaultIdentity(t *testing.T) {
	t.Parallel()

	id, err := DefaultIdentity(product{ID: 42}, 3)
	require.NoError(t, err)
	require.Equal(t, 42, id)

	id, err = DefaultIdentity(&product{ID: 9}, 3)
	require.NoError(t, err)
	require.Equal(t, 9, id)

	id, err = DefaultIdentity(keyed{key: "k1"}, 0)
	require.NoError(t, err)
	require.Equal(t, "k1", id)

	id, err = DefaultIdentity(map[string]any{"id": "m-1"}, 5)
	require.NoError(t, err)
	require.Equal(t, "m-1", id)

	id, err = DefaultIdentity(map[string]any{"id": nil}, 5)
	require.NoError(t, err)
	require.Equal(t, 5, id)

	s := "p-1"
	id, err = DefaultIdentity(pointerID{ID: &s}, 1)
	require.NoError(t, err)
	require.Equal(t, "p-1", id)

	id, err = DefaultIdentity(pointerID{}, 7)
	require.NoError(t, err)
	require.Equal(t, 7, id)

	id, err = DefaultIdentity(noID{Name: "x"}, 2)
	require.NoError(t, err)
	require.Equal(t, 2, id)

	id, err = DefaultIdentity("plain", 4)
	require.NoError(t, err)
	require.Equal(t, 4, id)
}

func TestBuildIndexRejectsDuplicates(t *testing.T) {
	t.Parallel()

	rows := []product{{ID: 1}, {ID: 2}, {ID: 1}}
	_, err := buildIndex(rows, DefaultIdentity[product])
	var idErr *RowIdentityError
	require.ErrorAs(t, err, &idErr)
	require.Equal(t, 2, idErr.Index)
	require.Equal(t, 1, idErr.ID)
	require.ErrorIs(t, err, errDuplicateID)
}

func TestBuildIndexSurfacesResolverErrors(t *testing.T) {
	t.Parallel()

	resolver := func(p product, i int) (any, error) {
		if p.ID == 2 {
			return nil, errBoom
		}
		return p.ID, nil
	}
	_, err := buildIndex([]product{{ID: 1}, {ID: 2}}, resolver)
	var idErr *RowIdentityError
	require.ErrorAs(t, err, &idErr)
	require.Equal(t, 1, idErr.Index)
	require.True(t, errors.Is(err, errBoom))
}

func TestBuildIndexRejectsUncomparableIDs(t *testing.T) {
	t.Parallel()

	resolver := func(p product, i int) (any, error) { return []int{p.ID}, nil }
	_, err := buildIndex([]product{{ID: 1}}, resolver)
	require.ErrorIs(t, err, errUncomparableID)
}

func TestBuildIndexMapsIDsToPositions(t *testing.T) {
	t.Parallel()

	idx, err := buildIndex(catalog(5), DefaultIdentity[product])
	require.NoError(t, err)
	require.Equal(t, []any{1, 2, 3, 4, 5}, idx.ids)
	require.Equal(t, 2, idx.byID[3])
}
