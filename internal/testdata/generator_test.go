package testdata

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/jaskgrid/internal/database"
	"github.com/jask/jaskgrid/internal/database/repository"
)

func seeded(t *testing.T, n int, seed int64) []repository.Transaction {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(filepath.Join(t.TempDir(), "grid.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.RunMigrationsWithDB(db))
	require.NoError(t, database.SeedDefaults(ctx, db))

	repo := repository.NewTransactionRepo(db)
	require.NoError(t, Seed(ctx, repo, n, seed))
	out, err := repo.List(ctx, repository.TransactionFilters{})
	require.NoError(t, err)
	return out
}

func TestSeedIsDeterministic(t *testing.T) {
	t.Parallel()

	a := seeded(t, 40, 7)
	b := seeded(t, 40, 7)
	require.Len(t, a, 40)

	idsA := map[string]int64{}
	for _, tx := range a {
		idsA[tx.ID] = tx.AmountCents
	}
	for _, tx := range b {
		amount, ok := idsA[tx.ID]
		require.True(t, ok, "missing %s", tx.ID)
		require.Equal(t, amount, tx.AmountCents)
	}
}

func TestSeedUsesKnownCategories(t *testing.T) {
	t.Parallel()

	known := map[string]bool{}
	for _, name := range []string{"Restaurants", "Shopping", "Groceries", "Subscriptions", "Income", "Transport", "Health", "Utilities", "Savings"} {
		known[database.CategoryID(name)] = true
	}
	for _, tx := range seeded(t, 30, 1) {
		if tx.CategoryID != nil {
			require.True(t, known[*tx.CategoryID])
		}
		require.Equal(t, database.DefaultAccountID, tx.AccountID)
	}
}
