// Package actual models a budget dataset as its raw record tables:
// accounts, categories, payees and transactions, with cent amounts
// and ISO date strings exactly as the dataset stores them.
//
// The Source port abstracts where the tables come from. Adapters in
// the subpackages read them from JSON fixtures, from a sqlite
// snapshot, or from a memoizing cache in front of another source.
package actual

import "context"

type (
	// Account is a raw account row. Balance is in cents.
	Account struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Balance int64  `json:"balance"`
	}

	// Category is a raw category row. GroupID names the category
	// group the category belongs to.
	Category struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		GroupID  string `json:"group_id"`
		IsIncome bool   `json:"is_income"`
	}

	// Payee is a raw payee row.
	Payee struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	// Transaction is a raw ledger row. Date is "YYYY-MM-DD" and
	// Amount is in cents. Category, Payee and TransferID are empty
	// when unset, and amounts absent from the source arrive as zero.
	Transaction struct {
		ID         string `json:"id"`
		Account    string `json:"account"`
		Category   string `json:"category,omitempty"`
		Payee      string `json:"payee,omitempty"`
		TransferID string `json:"transfer_id,omitempty"`
		Date       string `json:"date"`
		Amount     int64  `json:"amount"`
	}

	// Records bundles one consistent fetch of the four tables.
	Records struct {
		Accounts     []Account
		Categories   []Category
		Payees       []Payee
		Transactions []Transaction
	}

	// Source fetches raw record tables from a budget dataset.
	Source interface {
		Accounts(ctx context.Context) ([]Account, error)
		Categories(ctx context.Context) ([]Category, error)
		Payees(ctx context.Context) ([]Payee, error)
		Transactions(ctx context.Context) ([]Transaction, error)
	}
)
