// Package sqlite reads records from a budget snapshot database.
//
// A snapshot carries the four record tables in the raw shape the
// pipeline consumes:
//
//	accounts(id TEXT, name TEXT, balance INTEGER)
//	categories(id TEXT, name TEXT, group_id TEXT, is_income INTEGER)
//	payees(id TEXT, name TEXT)
//	transactions(id TEXT, account TEXT, category TEXT, payee TEXT,
//	             transfer_id TEXT, date TEXT, amount INTEGER)
//
// Dates are "YYYY-MM-DD" strings and amounts are integer cents.
// Nullable columns collapse to their zero values on read.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"actualboard/internal/actual"

	_ "modernc.org/sqlite"
)

// Store serves records from a snapshot file. It only ever reads.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping snapshot database: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Accounts(ctx context.Context) ([]actual.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(balance, 0) FROM accounts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []actual.Account
	for rows.Next() {
		var a actual.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Balance); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return accounts, nil
}

func (s *Store) Categories(ctx context.Context) ([]actual.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(group_id, ''), COALESCE(is_income, 0) FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []actual.Category
	for rows.Next() {
		var c actual.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.GroupID, &c.IsIncome); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

func (s *Store) Payees(ctx context.Context) ([]actual.Payee, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name FROM payees ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query payees: %w", err)
	}
	defer rows.Close()

	var payees []actual.Payee
	for rows.Next() {
		var p actual.Payee
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("scan payee: %w", err)
		}
		payees = append(payees, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payees: %w", err)
	}
	return payees, nil
}

func (s *Store) Transactions(ctx context.Context) ([]actual.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, account, COALESCE(category, ''), COALESCE(payee, ''),
		        COALESCE(transfer_id, ''), date, COALESCE(amount, 0)
		 FROM transactions ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []actual.Transaction
	for rows.Next() {
		var tx actual.Transaction
		if err := rows.Scan(&tx.ID, &tx.Account, &tx.Category, &tx.Payee, &tx.TransferID, &tx.Date, &tx.Amount); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return transactions, nil
}
