package actual

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// FetchError reports a failed fetch of one record table.
type FetchError struct {
	Resource string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Resource, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// FetchRecords loads the four record tables from src concurrently.
// The first table that fails cancels the remaining fetches, and the
// failure comes back as a *FetchError naming the table.
func FetchRecords(ctx context.Context, src Source) (Records, error) {
	var recs Records
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		accounts, err := src.Accounts(ctx)
		if err != nil {
			return &FetchError{Resource: "accounts", Err: err}
		}
		recs.Accounts = accounts
		return nil
	})
	g.Go(func() error {
		categories, err := src.Categories(ctx)
		if err != nil {
			return &FetchError{Resource: "categories", Err: err}
		}
		recs.Categories = categories
		return nil
	})
	g.Go(func() error {
		payees, err := src.Payees(ctx)
		if err != nil {
			return &FetchError{Resource: "payees", Err: err}
		}
		recs.Payees = payees
		return nil
	})
	g.Go(func() error {
		transactions, err := src.Transactions(ctx)
		if err != nil {
			return &FetchError{Resource: "transactions", Err: err}
		}
		recs.Transactions = transactions
		return nil
	})
	if err := g.Wait(); err != nil {
		return Records{}, err
	}
	return recs, nil
}
