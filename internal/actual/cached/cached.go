// Package cached memoizes a record source for the life of a session.
package cached

import (
	"context"
	"sync"

	"actualboard/internal/actual"
)

// Source wraps another source and serves each record table from
// memory after its first successful fetch. Entries never expire, so
// one session always sees one consistent dataset. Reset starts the
// next session.
type Source struct {
	src actual.Source

	accounts     table[actual.Account]
	categories   table[actual.Category]
	payees       table[actual.Payee]
	transactions table[actual.Transaction]
}

// Stats counts reads served from memory against reads that went to
// the underlying source.
type Stats struct {
	Hits   uint64
	Misses uint64
}

func New(src actual.Source) *Source {
	return &Source{src: src}
}

func (s *Source) Accounts(ctx context.Context) ([]actual.Account, error) {
	return s.accounts.load(ctx, s.src.Accounts)
}

func (s *Source) Categories(ctx context.Context) ([]actual.Category, error) {
	return s.categories.load(ctx, s.src.Categories)
}

func (s *Source) Payees(ctx context.Context) ([]actual.Payee, error) {
	return s.payees.load(ctx, s.src.Payees)
}

func (s *Source) Transactions(ctx context.Context) ([]actual.Transaction, error) {
	return s.transactions.load(ctx, s.src.Transactions)
}

// Reset drops every memoized table. The next read of each table goes
// back to the underlying source.
func (s *Source) Reset() {
	s.accounts.reset()
	s.categories.reset()
	s.payees.reset()
	s.transactions.reset()
}

func (s *Source) Stats() Stats {
	var total Stats
	for _, add := range []func() (uint64, uint64){
		s.accounts.stats,
		s.categories.stats,
		s.payees.stats,
		s.transactions.stats,
	} {
		hits, misses := add()
		total.Hits += hits
		total.Misses += misses
	}
	return total
}

// table memoizes one record table. A failed fetch is not stored, so
// the next read retries the source. The lock is held across the
// fetch, which collapses concurrent readers of the same table into a
// single upstream call.
type table[T any] struct {
	mu     sync.Mutex
	filled bool
	rows   []T
	hits   uint64
	misses uint64
}

func (t *table[T]) load(ctx context.Context, fetch func(context.Context) ([]T, error)) ([]T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.filled {
		t.hits++
		return append([]T(nil), t.rows...), nil
	}
	t.misses++
	rows, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	t.rows = rows
	t.filled = true
	return append([]T(nil), t.rows...), nil
}

func (t *table[T]) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.filled = false
	t.rows = nil
}

func (t *table[T]) stats() (hits, misses uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hits, t.misses
}
