package database

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/jask/jaskgrid/internal/database/repository"
)

// DefaultAccountID is the deterministic id of the account SeedDefaults creates.
var DefaultAccountID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("acct:Everyday")).String()

// SeedDefaults ensures a baseline account and categories exist for new
// databases. It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	acctRepo := repository.NewAccountRepo(db)
	acct, err := acctRepo.Get(ctx, DefaultAccountID)
	if err != nil {
		return err
	}
	if acct == nil {
		if err := acctRepo.Upsert(ctx, repository.Account{
			ID: DefaultAccountID, Name: "Everyday", Institution: "Local", AccountType: "checking",
		}); err != nil {
			return err
		}
	}

	existing, err := repository.NewCategoryRepo(db).List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	return WithTx(ctx, db, func(tx *sql.Tx) error {
		catRepo := repository.NewCategoryRepo(tx)
		for idx, path := range DefaultCategories {
			parts := strings.Split(path, ">")
			var parentID *string
			for _, raw := range parts {
				name := strings.TrimSpace(raw)
				id := CategoryID(name)
				cat := repository.Category{ID: id, Name: name, ParentID: parentID, SortOrder: idx}
				if err := catRepo.Upsert(ctx, cat); err != nil {
					return err
				}
				parentID = &id
			}
		}
		return nil
	})
}

// DefaultCategories lists the seeded category paths in display order.
var DefaultCategories = []string{
	"Income",
	"Food > Groceries",
	"Food > Restaurants",
	"Transport",
	"Shopping",
	"Utilities",
	"Subscriptions",
	"Savings",
	"Health",
	"Entertainment",
}

// CategoryID returns the deterministic id of a seeded category name.
func CategoryID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("cat:"+name)).String()
}
