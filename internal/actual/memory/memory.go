// Package memory provides an in-process record source backed by JSON
// fixture files, with a built-in demo dataset when no fixtures exist.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"actualboard/internal/actual"
)

// Store serves a fixed set of records. Reads return copies, so
// callers can never mutate the backing data.
type Store struct {
	mu   sync.RWMutex
	recs actual.Records
}

func New(recs actual.Records) *Store {
	return &Store{recs: recs}
}

// NewFromFiles loads accounts.json, categories.json, payees.json and
// transactions.json from base. When none of the files exist the store
// falls back to the demo dataset; when some exist, all four must.
func NewFromFiles(base string) (*Store, error) {
	names := []string{"accounts.json", "categories.json", "payees.json", "transactions.json"}
	missing := 0
	for _, name := range names {
		if _, err := os.Stat(filepath.Join(base, name)); err != nil {
			missing++
		}
	}
	if missing == len(names) {
		return New(demoRecords()), nil
	}

	var recs actual.Records
	if err := readJSON(filepath.Join(base, "accounts.json"), &recs.Accounts); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(base, "categories.json"), &recs.Categories); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(base, "payees.json"), &recs.Payees); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(base, "transactions.json"), &recs.Transactions); err != nil {
		return nil, err
	}
	return New(recs), nil
}

func (s *Store) Accounts(_ context.Context) ([]actual.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]actual.Account(nil), s.recs.Accounts...), nil
}

func (s *Store) Categories(_ context.Context) ([]actual.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]actual.Category(nil), s.recs.Categories...), nil
}

func (s *Store) Payees(_ context.Context) ([]actual.Payee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]actual.Payee(nil), s.recs.Payees...), nil
}

func (s *Store) Transactions(_ context.Context) ([]actual.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]actual.Transaction(nil), s.recs.Transactions...), nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read fixture %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse fixture %s: %w", filepath.Base(path), err)
	}
	return nil
}

// demoRecords is a small three-month dataset: two asset accounts, a
// credit card, salary income and everyday spending, plus one savings
// transfer pair.
func demoRecords() actual.Records {
	return actual.Records{
		Accounts: []actual.Account{
			{ID: "a-checking", Name: "Checking", Balance: 125000},
			{ID: "a-savings", Name: "Savings", Balance: 800000},
			{ID: "a-card", Name: "Credit Card", Balance: -45000},
		},
		Categories: []actual.Category{
			{ID: "c-salary", Name: "Salary", GroupID: "grp-income", IsIncome: true},
			{ID: "c-interest", Name: "Interest", GroupID: "grp-income", IsIncome: true},
			{ID: "c-groceries", Name: "Groceries", GroupID: "grp-daily"},
			{ID: "c-restaurants", Name: "Restaurants", GroupID: "grp-daily"},
			{ID: "c-rent", Name: "Rent", GroupID: "grp-housing"},
		},
		Payees: []actual.Payee{
			{ID: "p-employer", Name: "Acme Corp"},
			{ID: "p-market", Name: "Corner Market"},
			{ID: "p-diner", Name: "Blue Diner"},
			{ID: "p-landlord", Name: "Landlord"},
		},
		Transactions: []actual.Transaction{
			{ID: "t-01", Account: "a-checking", Category: "c-salary", Payee: "p-employer", Date: "2024-01-05", Amount: 320000},
			{ID: "t-02", Account: "a-checking", Category: "c-rent", Payee: "p-landlord", Date: "2024-01-06", Amount: -95000},
			{ID: "t-03", Account: "a-checking", Category: "c-groceries", Payee: "p-market", Date: "2024-01-12", Amount: -14250},
			{ID: "t-04", Account: "a-card", Category: "c-restaurants", Payee: "p-diner", Date: "2024-01-20", Amount: -6800},
			{ID: "t-05", Account: "a-checking", Category: "c-salary", Payee: "p-employer", Date: "2024-02-05", Amount: 320000},
			{ID: "t-06", Account: "a-checking", Category: "c-rent", Payee: "p-landlord", Date: "2024-02-06", Amount: -95000},
			{ID: "t-07", Account: "a-checking", Category: "c-groceries", Payee: "p-market", Date: "2024-02-14", Amount: -16900},
			{ID: "t-08", Account: "a-checking", Date: "2024-02-20", Amount: -50000, TransferID: "t-09"},
			{ID: "t-09", Account: "a-savings", Date: "2024-02-20", Amount: 50000, TransferID: "t-08"},
			{ID: "t-10", Account: "a-savings", Category: "c-interest", Date: "2024-02-28", Amount: 1200},
			{ID: "t-11", Account: "a-checking", Category: "c-salary", Payee: "p-employer", Date: "2024-03-05", Amount: 320000},
			{ID: "t-12", Account: "a-checking", Category: "c-rent", Payee: "p-landlord", Date: "2024-03-06", Amount: -95000},
			{ID: "t-13", Account: "a-card", Category: "c-groceries", Payee: "p-market", Date: "2024-03-09", Amount: -15400},
			{ID: "t-14", Account: "a-checking", Date: "2024-03-18", Amount: -3000},
		},
	}
}
