package testdata

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/jask/jaskgrid/internal/database"
	"github.com/jask/jaskgrid/internal/database/repository"
)

type sample struct {
	desc     string
	merchant string
	category string
	min, max int64
}

var samples = []sample{
	{"UBER EATS* SUSHI", "Uber Eats", "Restaurants", -6000, -1500},
	{"AMAZON.COM*XYZ", "Amazon", "Shopping", -25000, -900},
	{"WOOLWORTHS 1234", "Woolworths", "Groceries", -18000, -2500},
	{"SPOTIFY P0123", "Spotify", "Subscriptions", -1299, -1299},
	{"SALARY ACME PTY", "", "Income", 350000, 420000},
	{"OPAL TOPUP", "Opal", "Transport", -5000, -1000},
	{"CHEMIST WAREHOUSE", "Chemist Warehouse", "Health", -6000, -800},
	{"AGL ENERGY", "AGL", "Utilities", -24000, -9000},
	{"TRANSFER TO SAVER", "", "Savings", -50000, -10000},
	{"CINEMA NOVA", "", "", -4000, -1800},
}

// Seed inserts n sample transactions into the default account. The same seed
// always produces the same rows.
func Seed(ctx context.Context, txns *repository.TransactionRepo, n int, seed int64) error {
	rng := rand.New(rand.NewSource(seed))
	ids := rand.New(rand.NewSource(seed))
	base := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	for i := 0; i < n; i++ {
		s := samples[rng.Intn(len(samples))]
		amount := s.min
		if s.max > s.min {
			amount += rng.Int63n(s.max - s.min + 1)
		}
		status := repository.StatusPending
		if rng.Intn(10) < 3 {
			status = repository.StatusReviewed
		}
		id, err := uuid.NewRandomFromReader(ids)
		if err != nil {
			return fmt.Errorf("generate id: %w", err)
		}
		tx := repository.Transaction{
			ID:             id.String(),
			AccountID:      database.DefaultAccountID,
			Date:           base.AddDate(0, 0, -rng.Intn(90)),
			AmountCents:    amount,
			RawDescription: s.desc,
			Status:         status,
		}
		if s.merchant != "" {
			m := s.merchant
			tx.MerchantName = &m
		}
		if s.category != "" {
			c := database.CategoryID(s.category)
			tx.CategoryID = &c
		}
		if err := txns.Insert(ctx, tx); err != nil {
			return fmt.Errorf("insert sample %d: %w", i, err)
		}
	}
	return nil
}
