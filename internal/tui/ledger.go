package tui

import (
	"context"
	"fmt"
	"slices"

	"github.com/jask/jaskgrid/internal/database/repository"
	"github.com/jask/jaskgrid/internal/grid"
)

// Row is one ledger line: a transaction joined to its category and account names.
type Row struct {
	repository.Transaction
	Category string
	Account  string
}

// Money is an amount in cents.
type Money int64

func (m Money) String() string {
	sign := ""
	c := int64(m)
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// Ledger column keys.
const (
	ColDate        = "date"
	ColDescription = "description"
	ColCategory    = "category"
	ColAccount     = "account"
	ColAmount      = "amount"
	ColStatus      = "status"
	ColNotes       = "notes"
)

// Columns builds the ledger registry.
func Columns() (*grid.Registry[Row], error) {
	return grid.NewBuilder[Row]().
		Column(grid.Column[Row]{Key: ColDate, Header: "Date", Width: 10, NoSearch: true,
			Value: grid.Get(func(r Row) any { return r.Date })}).
		Column(grid.Column[Row]{Key: ColDescription, Header: "Description", Width: 28, Natural: true,
			Value: grid.Get(func(r Row) any { return description(r) })}).
		Column(grid.Column[Row]{Key: ColCategory, Header: "Category", Width: 20,
			Value: grid.Get(func(r Row) any { return optional(r.Category) })}).
		Column(grid.Column[Row]{Key: ColAccount, Header: "Account", Width: 12,
			Value: grid.Get(func(r Row) any { return r.Account })}).
		Column(grid.Column[Row]{Key: ColAmount, Header: "Amount", Width: 11, Align: grid.AlignRight,
			Value: grid.Get(func(r Row) any { return Money(r.AmountCents) })}).
		Column(grid.Column[Row]{Key: ColStatus, Header: "Status", Width: 8, NoSearch: true,
			Value: grid.Get(func(r Row) any { return r.Status })}).
		Column(grid.Column[Row]{Key: ColNotes, Header: "Notes", Width: 20, Hidden: true, NoSort: true,
			Value: grid.Get(func(r Row) any { return r.Comment })}).
		Build()
}

func description(r Row) string {
	if r.MerchantName != nil && *r.MerchantName != "" {
		return *r.MerchantName
	}
	return r.RawDescription
}

// optional maps "" to a null value so it sorts last.
func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Repos bundles the repositories the ledger browser reads and writes.
type Repos struct {
	Transactions *repository.TransactionRepo
	Categories   *repository.CategoryRepo
	Accounts     *repository.AccountRepo
}

// LoadLedger reads every transaction and resolves category paths and account names.
func LoadLedger(ctx context.Context, repos Repos) ([]Row, error) {
	txns, err := repos.Transactions.List(ctx, repository.TransactionFilters{})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	paths, err := repos.Categories.Paths(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	accts, err := repos.Accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	names := make(map[string]string, len(accts))
	for _, a := range accts {
		names[a.ID] = a.Name
	}

	rows := make([]Row, len(txns))
	for i, t := range txns {
		rows[i] = Row{Transaction: t, Account: names[t.AccountID]}
		if t.CategoryID != nil {
			rows[i].Category = paths[*t.CategoryID]
		}
	}
	return rows, nil
}

// categoryOptions returns the distinct non-empty categories in rows, sorted.
func categoryOptions(rows []Row) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range rows {
		if r.Category != "" && !seen[r.Category] {
			seen[r.Category] = true
			out = append(out, r.Category)
		}
	}
	slices.Sort(out)
	return out
}
