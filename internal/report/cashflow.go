package report

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"actualboard/internal/core"
)

// Smoothed couples a monthly series with its trailing moving
// averages. MA6 and MA12 stay nil until the period list fits one
// full window.
type Smoothed struct {
	Monthly Series
	MA6     Series
	MA12    Series
}

// Cashflow holds the monthly flow series per category group plus the
// income, expenses and difference roll-ups. Every series carries its
// moving average variants.
type Cashflow struct {
	Periods  []core.Month
	Groups   map[string]Smoothed
	Income   Smoothed
	Expenses Smoothed
	Diff     Smoothed
}

// BuildCashflow rolls per-category flows up into category groups and
// the income and expenses series. A group counts as income only when
// every one of its member categories is an income category; all
// other groups count as expenses. Diff is income plus expenses per
// period, expenses being negative.
func BuildCashflow(snap *Snapshot, flows MonthlyFlows) Cashflow {
	n := len(flows.Periods)
	income := make(Series, n)
	expenses := make(Series, n)
	diff := make(Series, n)
	sums := make(map[string]Series)

	incomeGroup := make(map[string]bool)
	for _, c := range snap.Categories {
		if flag, ok := incomeGroup[c.GroupID]; ok {
			incomeGroup[c.GroupID] = flag && c.IsIncome
		} else {
			incomeGroup[c.GroupID] = c.IsIncome
		}
	}

	for _, c := range snap.Categories {
		series, ok := sums[c.GroupID]
		if !ok {
			series = make(Series, n)
			sums[c.GroupID] = series
		}
		for i, bucket := range flows.ByID[c.ID] {
			series[i] = series[i].Add(bucket.Sum)
		}
	}

	for groupID, series := range sums {
		target := expenses
		if incomeGroup[groupID] {
			target = income
		}
		for i := range series {
			target[i] = target[i].Add(series[i])
		}
	}
	for i := 0; i < n; i++ {
		diff[i] = income[i].Add(expenses[i])
	}

	cf := Cashflow{
		Periods:  flows.Periods,
		Groups:   make(map[string]Smoothed, len(sums)),
		Income:   smooth(income),
		Expenses: smooth(expenses),
		Diff:     smooth(diff),
	}
	for groupID, series := range sums {
		cf.Groups[groupID] = smooth(series)
	}
	return cf
}

// smooth derives the moving average variants of a series.
func smooth(s Series) Smoothed {
	return Smoothed{
		Monthly: s,
		MA6:     movingAverage(s, 6),
		MA12:    movingAverage(s, 12),
	}
}

// movingAverage computes a trailing average over window w. The
// result is end aligned: point i covers source periods i through
// i+w-1, so the series has len(src)-w+1 points. It returns nil when
// src holds fewer than w points.
func movingAverage(src Series, w int) Series {
	if len(src) < w {
		return nil
	}
	out := make(Series, 0, len(src)-w+1)
	window := decimal.Zero
	div := decimal.NewFromInt(int64(w))
	for i, v := range src {
		window = window.Add(v)
		if i >= w {
			window = window.Sub(src[i-w])
		}
		if i >= w-1 {
			out = append(out, window.Div(div))
		}
	}
	return out
}

// excludeFromCashflow drops transfer legs and transactions on the
// excluded payees. Excluded payees arrive as display names and
// resolve against the snapshot; names it does not know are skipped
// with a warning.
func excludeFromCashflow(snap *Snapshot, txs []core.Transaction, excludePayees []string) []core.Transaction {
	excluded := make(map[string]bool, len(excludePayees))
	for _, name := range excludePayees {
		id, ok := snap.PayeeIDByName(name)
		if !ok {
			slog.Warn("excluded payee not in dataset", "payee", name)
			continue
		}
		excluded[id] = true
	}

	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.TransferID != "" {
			continue
		}
		if excluded[tx.Payee] {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// trimPeriods drops the first and/or last period, never trimming the
// list below one period.
func trimPeriods(periods []core.Month, first, last bool) []core.Month {
	out := periods
	if first && len(out) > 1 {
		out = out[1:]
	}
	if last && len(out) > 1 {
		out = out[:len(out)-1]
	}
	return out
}
