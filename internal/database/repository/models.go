package repository

import (
	"context"
	"database/sql"
	"time"
)

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Transaction statuses.
const (
	StatusPending  = "pending"
	StatusReviewed = "reviewed"
)

// Account represents an account row.
type Account struct {
	ID          string
	Name        string
	Institution string
	AccountType string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Category represents a category row.
type Category struct {
	ID        string
	ParentID  *string
	Name      string
	Icon      *string
	SortOrder int
}

// Transaction represents a transaction row.
type Transaction struct {
	ID             string
	AccountID      string
	ExternalID     *string
	Date           time.Time
	PostedDate     *time.Time
	AmountCents    int64
	RawDescription string
	MerchantName   *string
	CategoryID     *string
	Comment        *string
	Status         string
	SourceHash     *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RowID identifies the transaction inside a data grid.
func (t Transaction) RowID() any { return t.ID }
