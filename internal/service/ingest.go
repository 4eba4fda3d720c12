package service

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/jask/jaskgrid/internal/database/repository"
)

// IngestService imports ledger CSV files, including the browser's own exports.
type IngestService struct {
	Transactions *repository.TransactionRepo
	Accounts     *repository.AccountRepo
	Categories   *repository.CategoryRepo
	// DefaultAccount receives rows without an Account column.
	DefaultAccount string

	accountCache  map[string]repository.Account
	categoryByKey map[string]string
}

type IngestResult struct {
	Imported int
	Skipped  int
	Errors   []error
}

// Header names are matched case-insensitively. Date, Description and Amount
// are required; Category, Account, Status and Notes are optional.
const (
	headerDate        = "date"
	headerDescription = "description"
	headerAmount      = "amount"
	headerCategory    = "category"
	headerAccount     = "account"
	headerStatus      = "status"
	headerNotes       = "notes"
)

// ImportCSV reads a headed CSV. Rows already imported (same account, date,
// amount and description) are skipped. Amounts are dollars with an optional
// sign, currency symbol and thousands separators.
func (s *IngestService) ImportCSV(ctx context.Context, r io.Reader, tz *time.Location) (IngestResult, error) {
	res := IngestResult{}
	csvr := csv.NewReader(bufio.NewReader(r))
	csvr.TrimLeadingSpace = true
	csvr.FieldsPerRecord = -1

	header, err := csvr.Read()
	if err == io.EOF {
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, req := range []string{headerDate, headerDescription, headerAmount} {
		if _, ok := cols[req]; !ok {
			return res, fmt.Errorf("missing %q column", req)
		}
	}
	if err := s.loadCategories(ctx); err != nil {
		return res, err
	}
	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	line := 1
	for {
		line++
		rec, err := csvr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		date, err := parseLocalDate(field(rec, headerDate), tz)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d date: %w", line, err))
			continue
		}
		amountCents, err := dollarsToCents(field(rec, headerAmount))
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d amount: %w", line, err))
			continue
		}
		desc := field(rec, headerDescription)
		if desc == "" {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: description required", line))
			continue
		}
		acctName := field(rec, headerAccount)
		if acctName == "" {
			acctName = s.DefaultAccount
		}
		acct, err := s.accountForName(ctx, acctName)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d account: %w", line, err))
			continue
		}
		var categoryID *string
		if name := field(rec, headerCategory); name != "" {
			id, ok := s.categoryByKey[strings.ToLower(name)]
			if !ok {
				res.Errors = append(res.Errors, fmt.Errorf("line %d: unknown category %q", line, name))
				continue
			}
			categoryID = &id
		}

		t := repository.Transaction{
			ID:             uuid.NewString(),
			AccountID:      acct.ID,
			Date:           date,
			AmountCents:    amountCents,
			RawDescription: desc,
			CategoryID:     categoryID,
			Comment:        nullableStr(field(rec, headerNotes)),
			Status:         chooseStatus(field(rec, headerStatus)),
			SourceHash:     hashSource(acct.ID, date.Format(time.DateOnly), strconv.FormatInt(amountCents, 10), desc),
		}
		if err := s.Transactions.Insert(ctx, t); err != nil {
			if isUniqueViolation(err) {
				res.Skipped++
				continue
			}
			res.Errors = append(res.Errors, fmt.Errorf("line %d insert: %w", line, err))
			continue
		}
		res.Imported++
	}
	return res, nil
}

// loadCategories indexes categories by lower-cased leaf name and full path.
func (s *IngestService) loadCategories(ctx context.Context) error {
	s.categoryByKey = map[string]string{}
	if s.Categories == nil {
		return nil
	}
	paths, err := s.Categories.Paths(ctx)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	for id, path := range paths {
		s.categoryByKey[strings.ToLower(path)] = id
		if i := strings.LastIndex(path, ">"); i >= 0 {
			leaf := strings.ToLower(strings.TrimSpace(path[i+1:]))
			if _, taken := s.categoryByKey[leaf]; !taken {
				s.categoryByKey[leaf] = id
			}
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}

func dollarsToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimLeft(s, "+-")
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	c := int64(math.Round(f * 100))
	if neg {
		c = -c
	}
	return c, nil
}

func nullableStr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func chooseStatus(s string) string {
	switch strings.ToLower(s) {
	case repository.StatusReviewed:
		return repository.StatusReviewed
	}
	return repository.StatusPending
}

func hashSource(parts ...string) *string {
	joined := strings.Join(parts, "|")
	sum := sha256.Sum256([]byte(joined))
	h := fmt.Sprintf("%x", sum[:])
	return &h
}

func parseLocalDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func (s *IngestService) accountForName(ctx context.Context, name string) (repository.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return repository.Account{}, errors.New("account name required")
	}
	if s.accountCache == nil {
		s.accountCache = make(map[string]repository.Account)
	}
	if acct, ok := s.accountCache[name]; ok {
		return acct, nil
	}
	id := AccountID(name)
	existing, err := s.Accounts.Get(ctx, id)
	if err != nil {
		return repository.Account{}, err
	}
	acct := repository.Account{ID: id, Name: name, Institution: name, AccountType: "checking"}
	if existing != nil {
		acct = *existing
	} else if err := s.Accounts.Upsert(ctx, acct); err != nil {
		return repository.Account{}, err
	}
	s.accountCache[name] = acct
	return acct, nil
}

// AccountID derives the account id for a name.
func AccountID(name string) string {
	key := strings.TrimSpace(name)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("acct:"+key)).String()
}
