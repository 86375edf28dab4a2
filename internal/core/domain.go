// Package core defines the normalized domain model shared by the
// aggregation pipeline: accounts, categories, payees and transactions,
// plus the month arithmetic the report series are keyed on.
//
// Raw records arrive with integer cent amounts and string dates. The
// normalized types carry exact decimal amounts and parsed dates so the
// aggregation code never touches floats.
package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// Account is a budget account. Balance is the account's running
	// balance in currency units.
	Account struct {
		ID      string
		Name    string
		Balance decimal.Decimal
	}

	// Category is a budget category. Every category belongs to a
	// category group and is flagged as income or expense in the
	// budget file.
	Category struct {
		ID       string
		Name     string
		GroupID  string
		IsIncome bool
	}

	// Payee is a transaction counterparty.
	Payee struct {
		ID   string
		Name string
	}

	// Transaction is a single ledger movement. Account, Category and
	// Payee hold record ids and are empty when unset. TransferID is
	// non-empty when the transaction is one leg of a transfer between
	// two accounts.
	Transaction struct {
		ID         string
		Account    string
		Category   string
		Payee      string
		TransferID string
		Date       Date
		Amount     decimal.Decimal
	}

	// Date is a transaction date with day precision.
	Date struct {
		time.Time
	}
)

const dateLayout = "2006-01-02"

// ErrEmptyDataset marks a run that produced no transactions. It is
// reported, not raised: callers log it and continue with a degenerate
// single-period series.
var ErrEmptyDataset = errors.New("dataset contains no transactions")

// MalformedRecordError reports a record that cannot be normalized,
// such as a transaction whose date does not parse. It aborts the run.
type MalformedRecordError struct {
	Kind  string // record kind, e.g. "transaction"
	ID    string
	Field string
	Err   error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed %s %s: %s: %v", e.Kind, e.ID, e.Field, e.Err)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

// ParseDate parses an ISO date such as "2024-01-15".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// Month returns the calendar month the date falls in.
func (d Date) Month() Month {
	return MonthOf(d.Time)
}

// String formats the date back to its ISO form.
func (d Date) String() string {
	return d.Format(dateLayout)
}
