// Package report turns raw budget records into the monthly series a
// dashboard consumes: net worth by account group, cashflow by
// category group and savings rate metrics.
package report

import (
	"actualboard/internal/actual"
	"actualboard/internal/core"
)

// Snapshot is one normalized, internally consistent view of a
// dataset. Its fields are built once and never mutated afterwards,
// so a snapshot can be shared across goroutines freely.
type Snapshot struct {
	Accounts     []core.Account
	Categories   []core.Category
	Payees       []core.Payee
	Transactions []core.Transaction

	accountByID     map[string]core.Account
	categoryByID    map[string]core.Category
	accountIDByName map[string]string
	payeeIDByName   map[string]string
}

// NewSnapshot normalizes raw records: cent amounts become exact
// decimals and date strings become parsed dates. A transaction whose
// date does not parse aborts the snapshot with a
// *core.MalformedRecordError.
func NewSnapshot(recs actual.Records) (*Snapshot, error) {
	snap := &Snapshot{
		Accounts:        make([]core.Account, 0, len(recs.Accounts)),
		Categories:      make([]core.Category, 0, len(recs.Categories)),
		Payees:          make([]core.Payee, 0, len(recs.Payees)),
		Transactions:    make([]core.Transaction, 0, len(recs.Transactions)),
		accountByID:     make(map[string]core.Account, len(recs.Accounts)),
		categoryByID:    make(map[string]core.Category, len(recs.Categories)),
		accountIDByName: make(map[string]string, len(recs.Accounts)),
		payeeIDByName:   make(map[string]string, len(recs.Payees)),
	}

	for _, a := range recs.Accounts {
		acct := core.Account{ID: a.ID, Name: a.Name, Balance: core.AmountFromCents(a.Balance)}
		snap.Accounts = append(snap.Accounts, acct)
		snap.accountByID[acct.ID] = acct
		snap.accountIDByName[acct.Name] = acct.ID
	}
	for _, c := range recs.Categories {
		cat := core.Category{ID: c.ID, Name: c.Name, GroupID: c.GroupID, IsIncome: c.IsIncome}
		snap.Categories = append(snap.Categories, cat)
		snap.categoryByID[cat.ID] = cat
	}
	for _, p := range recs.Payees {
		payee := core.Payee{ID: p.ID, Name: p.Name}
		snap.Payees = append(snap.Payees, payee)
		snap.payeeIDByName[payee.Name] = payee.ID
	}
	for _, t := range recs.Transactions {
		date, err := core.ParseDate(t.Date)
		if err != nil {
			return nil, &core.MalformedRecordError{Kind: "transaction", ID: t.ID, Field: "date", Err: err}
		}
		snap.Transactions = append(snap.Transactions, core.Transaction{
			ID:         t.ID,
			Account:    t.Account,
			Category:   t.Category,
			Payee:      t.Payee,
			TransferID: t.TransferID,
			Date:       date,
			Amount:     core.AmountFromCents(t.Amount),
		})
	}
	return snap, nil
}

// AccountByID looks up a normalized account by record id.
func (s *Snapshot) AccountByID(id string) (core.Account, bool) {
	a, ok := s.accountByID[id]
	return a, ok
}

// CategoryByID looks up a normalized category by record id.
func (s *Snapshot) CategoryByID(id string) (core.Category, bool) {
	c, ok := s.categoryByID[id]
	return c, ok
}

// AccountIDByName resolves an account's display name to its record
// id. Names duplicated in the dataset resolve to the last such row.
func (s *Snapshot) AccountIDByName(name string) (string, bool) {
	id, ok := s.accountIDByName[name]
	return id, ok
}

// PayeeIDByName resolves a payee's display name to its record id.
func (s *Snapshot) PayeeIDByName(name string) (string, bool) {
	id, ok := s.payeeIDByName[name]
	return id, ok
}
