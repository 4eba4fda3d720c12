package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/jaskgrid/internal/database/repository"
)

func TestRunMigrationsIsIdempotent(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "nested", "grid.db")
	db, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Ping())

	require.NoError(t, RunMigrations(dbPath))
	require.NoError(t, RunMigrations(dbPath))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM transactions").Scan(&count))
	require.Zero(t, count)
}

func TestRunMigrationsWithDBKeepsHandleOpen(t *testing.T) {
	t.Parallel()

	db, err := Open(filepath.Join(t.TempDir(), "grid.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, RunMigrationsWithDB(db))
	require.NoError(t, db.Ping())

	var tables int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('accounts', 'categories', 'transactions')`).Scan(&tables))
	require.Equal(t, 3, tables)
}

func TestSeedDefaults(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := Open(filepath.Join(t.TempDir(), "grid.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, RunMigrationsWithDB(db))

	require.NoError(t, SeedDefaults(ctx, db))
	require.NoError(t, SeedDefaults(ctx, db))

	acct, err := repository.NewAccountRepo(db).Get(ctx, DefaultAccountID)
	require.NoError(t, err)
	require.NotNil(t, acct)
	require.Equal(t, "Everyday", acct.Name)

	paths, err := repository.NewCategoryRepo(db).Paths(ctx)
	require.NoError(t, err)
	require.Equal(t, "Food > Groceries", paths[CategoryID("Groceries")])
	require.Equal(t, "Income", paths[CategoryID("Income")])
	require.Len(t, paths, 11)
}

func TestWithTxRollsBack(t *testing.T) {
	t.Parallel()

	db, err := Open(filepath.Join(t.TempDir(), "grid.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, RunMigrationsWithDB(db))

	err = WithTx(context.Background(), db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO accounts(id, name) VALUES('a1', 'Temp')`); err != nil {
			return err
		}
		return errRollback
	})
	require.ErrorIs(t, err, errRollback)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM accounts").Scan(&count))
	require.Zero(t, count)
}

var errRollback = errors.New("rollback")

func TestOpenUsesWALAndForeignKeys(t *testing.T) {
	t.Parallel()

	db, err := Open(filepath.Join(t.TempDir(), "nested", "grid.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	require.Equal(t, "wal", mode)
	var fk int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	require.Equal(t, 1, fk)
}
