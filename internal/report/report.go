package report

import (
	"context"
	"log/slog"
	"time"

	"actualboard/internal/core"
)

// Options selects how a report slices the dataset. Account groups
// and excluded payees are given by display name, the way a dashboard
// config file spells them.
type Options struct {
	// AccountGroups maps a net worth group name to its member
	// account names. Names prefixed "assets_" or "liabilities_" also
	// roll into the assets and debts series.
	AccountGroups map[string][]string

	// GroupSort is the display order for account groups.
	GroupSort []string

	// ExcludePayees keeps those payees' transactions out of
	// cashflow.
	ExcludePayees []string

	// TrimFirstPeriod drops the earliest period from cashflow. Set
	// it when the dataset starts mid month.
	TrimFirstPeriod bool

	// TrimLastPeriod drops the latest period from cashflow. Set it
	// when the latest month is still in progress.
	TrimLastPeriod bool
}

// Report is one full aggregation run over a snapshot.
type Report struct {
	GeneratedAt time.Time
	Periods     []core.Month
	NetWorth    NetWorth
	Cashflow    Cashflow
	Metrics     Metrics

	// AccountFlows and CategoryFlows are the per entity monthly
	// sums the series above were built from. Category flows align
	// to the trimmed cashflow periods, not Periods.
	AccountFlows  MonthlyFlows
	CategoryFlows MonthlyFlows

	Transactions      int
	SkippedAccounts   int
	SkippedCategories int

	// Empty flags a run over a dataset with no transactions. The
	// series then hold a single zero valued period.
	Empty bool
}

// Build runs the whole pipeline over snap: period enumeration,
// account and category grouping, then the net worth, cashflow and
// metrics series. An empty dataset is not an error; the report comes
// back flagged Empty.
func Build(ctx context.Context, snap *Snapshot, opts Options, now time.Time) *Report {
	start := time.Now()
	txs := snap.Transactions

	rep := &Report{
		GeneratedAt:  now,
		Transactions: len(txs),
		Empty:        len(txs) == 0,
	}
	if rep.Empty {
		slog.WarnContext(ctx, "building degenerate report", "error", core.ErrEmptyDataset)
	}

	rep.Periods = PeriodRange(txs, now)

	accountFlows := GroupByAccount(snap, txs, rep.Periods)
	rep.AccountFlows = accountFlows
	rep.SkippedAccounts = accountFlows.Skipped
	rep.NetWorth = BuildNetWorth(snap, accountFlows, opts.AccountGroups, opts.GroupSort)

	cashPeriods := trimPeriods(rep.Periods, opts.TrimFirstPeriod, opts.TrimLastPeriod)
	filtered := excludeFromCashflow(snap, txs, opts.ExcludePayees)
	categoryFlows := GroupByCategory(snap, filtered, cashPeriods)
	rep.CategoryFlows = categoryFlows
	rep.SkippedCategories = categoryFlows.Skipped
	rep.Cashflow = BuildCashflow(snap, categoryFlows)
	rep.Metrics = BuildMetrics(rep.Cashflow)

	slog.InfoContext(ctx, "report built",
		"periods", len(rep.Periods),
		"transactions", rep.Transactions,
		"skipped_accounts", rep.SkippedAccounts,
		"skipped_categories", rep.SkippedCategories,
		"empty", rep.Empty,
		"duration_ms", time.Since(start).Milliseconds())
	return rep
}
