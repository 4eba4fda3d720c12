package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// TransactionFilters defines list filters.
type TransactionFilters struct {
	Status     string
	AccountID  string
	CategoryID string
	Month      time.Time // use first day of month; zero time = no month filter
}

// TransactionRepo handles transactions.
type TransactionRepo struct {
	db *sql.DB
}

func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

const transactionColumns = "id, account_id, external_id, date, posted_date, amount, raw_description, merchant_name, category_id, comment, status, source_hash, created_at, updated_at"

func (r *TransactionRepo) Insert(ctx context.Context, t Transaction) error {
	if t.Status == "" {
		t.Status = StatusPending
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO transactions(
	 id, account_id, external_id, date, posted_date, amount, raw_description, merchant_name,
	 category_id, comment, status, source_hash, created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`,
		t.ID, t.AccountID, t.ExternalID, t.Date, t.PostedDate, t.AmountCents, t.RawDescription,
		t.MerchantName, t.CategoryID, t.Comment, t.Status, t.SourceHash)
	return err
}

func (r *TransactionRepo) UpdateStatus(ctx context.Context, id string, status string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE transactions SET status = ?, updated_at=CURRENT_TIMESTAMP WHERE id = ?`, status, id)
	return err
}

// UpdateStatusMany sets status on every listed transaction in one database
// transaction and reports how many rows changed.
func (r *TransactionRepo) UpdateStatusMany(ctx context.Context, ids []string, status string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	stmt, err := tx.PrepareContext(ctx, `UPDATE transactions SET status = ?, updated_at=CURRENT_TIMESTAMP WHERE id = ?`)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	defer stmt.Close()

	var changed int64
	for _, id := range ids {
		res, err := stmt.ExecContext(ctx, status, id)
		if err != nil {
			_ = tx.Rollback()
			return 0, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return 0, err
		}
		changed += n
	}
	return changed, tx.Commit()
}

func (r *TransactionRepo) List(ctx context.Context, f TransactionFilters) ([]Transaction, error) {
	where, args := f.clauses()
	query := "SELECT " + transactionColumns + " FROM transactions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC, created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Count returns the number of transactions matching f.
func (r *TransactionRepo) Count(ctx context.Context, f TransactionFilters) (int, error) {
	where, args := f.clauses()
	query := "SELECT COUNT(*) FROM transactions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	var n int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

func (f TransactionFilters) clauses() ([]string, []any) {
	var where []string
	var args []any

	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.AccountID != "" {
		where = append(where, "account_id = ?")
		args = append(args, f.AccountID)
	}
	if f.CategoryID != "" {
		where = append(where, "category_id = ?")
		args = append(args, f.CategoryID)
	}
	if !f.Month.IsZero() {
		start := time.Date(f.Month.Year(), f.Month.Month(), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, 0)
		where = append(where, "date >= ? AND date < ?")
		args = append(args, start, end)
	}
	return where, args
}

// Get returns nil without error when id is unknown.
func (r *TransactionRepo) Get(ctx context.Context, id string) (*Transaction, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// scanTransaction handles nullable fields for both Row and Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (Transaction, error) {
	var t Transaction
	var external, merchant, category, comment, source sql.NullString
	var posted sql.NullTime
	if err := row.Scan(&t.ID, &t.AccountID, &external, &t.Date, &posted, &t.AmountCents,
		&t.RawDescription, &merchant, &category, &comment, &t.Status, &source, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return Transaction{}, err
	}
	if external.Valid {
		t.ExternalID = &external.String
	}
	if posted.Valid {
		t.PostedDate = &posted.Time
	}
	if merchant.Valid {
		t.MerchantName = &merchant.String
	}
	if category.Valid {
		t.CategoryID = &category.String
	}
	if comment.Valid {
		t.Comment = &comment.String
	}
	if source.Valid {
		t.SourceHash = &source.String
	}
	return t, nil
}
