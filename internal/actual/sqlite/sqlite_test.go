package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

func seedSnapshot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE accounts (id TEXT PRIMARY KEY, name TEXT NOT NULL, balance INTEGER)`,
		`CREATE TABLE categories (id TEXT PRIMARY KEY, name TEXT NOT NULL, group_id TEXT, is_income INTEGER)`,
		`CREATE TABLE payees (id TEXT PRIMARY KEY, name TEXT NOT NULL)`,
		`CREATE TABLE transactions (id TEXT PRIMARY KEY, account TEXT NOT NULL, category TEXT,
			payee TEXT, transfer_id TEXT, date TEXT NOT NULL, amount INTEGER)`,
		`INSERT INTO accounts VALUES ('a1', 'Checking', 10000), ('a2', 'Savings', NULL)`,
		`INSERT INTO categories VALUES ('c1', 'Groceries', 'g1', 0), ('c2', 'Salary', 'g2', 1), ('c3', 'Misc', NULL, NULL)`,
		`INSERT INTO payees VALUES ('p1', 'Market')`,
		`INSERT INTO transactions VALUES
			('t1', 'a1', 'c1', 'p1', NULL, '2024-01-15', -2000),
			('t2', 'a1', 'c2', NULL, NULL, '2024-01-05', 320000),
			('t3', 'a1', NULL, NULL, NULL, '2024-02-01', NULL)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
	return path
}

func TestOpenMissingFileStillPings(t *testing.T) {
	// The driver creates an empty database on open, so Open succeeds
	// and the table queries are what fail.
	s, err := Open(filepath.Join(t.TempDir(), "fresh.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	if _, err := s.Accounts(context.Background()); err == nil {
		t.Fatalf("expected error for missing accounts table")
	}
}

func TestStoreReadsSnapshot(t *testing.T) {
	s, err := Open(seedSnapshot(t))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	accounts, err := s.Accounts(ctx)
	if err != nil {
		t.Fatalf("accounts: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(accounts))
	}
	// Ordered by name: Checking before Savings.
	if accounts[0].Name != "Checking" || accounts[0].Balance != 10000 {
		t.Fatalf("unexpected first account %+v", accounts[0])
	}
	if accounts[1].Balance != 0 {
		t.Fatalf("expected NULL balance to read as 0, got %d", accounts[1].Balance)
	}

	categories, err := s.Categories(ctx)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(categories) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(categories))
	}
	byID := map[string]bool{}
	for _, c := range categories {
		byID[c.ID] = c.IsIncome
	}
	if byID["c1"] || !byID["c2"] || byID["c3"] {
		t.Fatalf("unexpected income flags %+v", byID)
	}

	payees, err := s.Payees(ctx)
	if err != nil {
		t.Fatalf("payees: %v", err)
	}
	if len(payees) != 1 || payees[0].Name != "Market" {
		t.Fatalf("unexpected payees %+v", payees)
	}

	txs, err := s.Transactions(ctx)
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(txs))
	}
	// Ordered by date: t2 (Jan 5) first.
	if txs[0].ID != "t2" || txs[0].Amount != 320000 {
		t.Fatalf("unexpected first transaction %+v", txs[0])
	}
	if txs[1].Category != "c1" || txs[1].Payee != "p1" {
		t.Fatalf("unexpected second transaction %+v", txs[1])
	}
	last := txs[2]
	if last.Category != "" || last.Payee != "" || last.TransferID != "" {
		t.Fatalf("expected NULL refs to read as empty, got %+v", last)
	}
	if last.Amount != 0 {
		t.Fatalf("expected NULL amount to read as 0, got %d", last.Amount)
	}
}
