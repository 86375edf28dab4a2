package report

import (
	"github.com/shopspring/decimal"

	"actualboard/internal/core"
)

type (
	// PeriodBucket collects one entity's transactions for one period
	// together with their sum.
	PeriodBucket struct {
		Transactions []core.Transaction
		Sum          decimal.Decimal
	}

	// MonthlyFlows indexes period buckets by entity id. Every known
	// entity has exactly one bucket per period, aligned to Periods,
	// even when nothing moved. Skipped counts transactions that
	// referenced an id the snapshot does not know.
	MonthlyFlows struct {
		Periods []core.Month
		ByID    map[string][]PeriodBucket
		Skipped int
	}
)

// GroupByAccount buckets txs per account and period in a single
// pass. Transactions on unknown accounts are left out and counted in
// Skipped.
func GroupByAccount(snap *Snapshot, txs []core.Transaction, periods []core.Month) MonthlyFlows {
	known := make([]string, 0, len(snap.Accounts))
	for _, a := range snap.Accounts {
		known = append(known, a.ID)
	}
	return groupBy(txs, periods, known, func(tx core.Transaction) string { return tx.Account })
}

// GroupByCategory buckets txs per category and period in a single
// pass. Uncategorized transactions and ones on unknown categories
// are left out and counted in Skipped.
func GroupByCategory(snap *Snapshot, txs []core.Transaction, periods []core.Month) MonthlyFlows {
	known := make([]string, 0, len(snap.Categories))
	for _, c := range snap.Categories {
		known = append(known, c.ID)
	}
	return groupBy(txs, periods, known, func(tx core.Transaction) string { return tx.Category })
}

func groupBy(txs []core.Transaction, periods []core.Month, known []string, key func(core.Transaction) string) MonthlyFlows {
	flows := MonthlyFlows{
		Periods: periods,
		ByID:    make(map[string][]PeriodBucket, len(known)),
	}
	for _, id := range known {
		flows.ByID[id] = make([]PeriodBucket, len(periods))
	}
	index := make(map[core.Month]int, len(periods))
	for i, p := range periods {
		index[p] = i
	}
	for _, tx := range txs {
		buckets, ok := flows.ByID[key(tx)]
		if !ok {
			flows.Skipped++
			continue
		}
		i, ok := index[tx.Date.Month()]
		if !ok {
			// Month falls outside the period list, e.g. trimmed off.
			continue
		}
		buckets[i].Transactions = append(buckets[i].Transactions, tx)
		buckets[i].Sum = buckets[i].Sum.Add(tx.Amount)
	}
	return flows
}
