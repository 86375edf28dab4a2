package http

import (
	"time"

	"actualboard/internal/core"
	"actualboard/internal/report"
	"actualboard/internal/worker"
)

// Wire shapes for the JSON API. Decimal series become float64 at this
// boundary, exact values live only inside the report package. The
// one-shot reporter prints the same Dashboard bundle the API serves.
type (
	AccountView struct {
		ID      string  `json:"id"`
		Name    string  `json:"name"`
		Balance float64 `json:"balance"`
	}

	CategoryView struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		GroupID  string `json:"group_id"`
		IsIncome bool   `json:"is_income"`
	}

	PayeeView struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	TransactionView struct {
		ID         string     `json:"id"`
		Account    string     `json:"account"`
		Category   string     `json:"category,omitempty"`
		Payee      string     `json:"payee,omitempty"`
		TransferID string     `json:"transfer_id,omitempty"`
		Date       string     `json:"date"`
		Month      core.Month `json:"month"`
		Amount     float64    `json:"amount"`
	}

	NetWorthView struct {
		Periods []core.Month         `json:"periods"`
		Groups  map[string][]float64 `json:"groups"`
		Order   []string             `json:"order"`
		All     []float64            `json:"all"`
		Assets  []float64            `json:"assets"`
		Debts   []float64            `json:"debts"`
	}

	SeriesView struct {
		Monthly []float64 `json:"monthly"`
		MA6     []float64 `json:"ma6,omitempty"`
		MA12    []float64 `json:"ma12,omitempty"`
	}

	CashflowView struct {
		Periods  []core.Month          `json:"periods"`
		Groups   map[string]SeriesView `json:"groups"`
		Income   SeriesView            `json:"income"`
		Expenses SeriesView            `json:"expenses"`
		Diff     SeriesView            `json:"diff"`
	}

	MetricsView struct {
		Periods      []core.Month `json:"periods"`
		SavingsRate  []float64    `json:"savings_rate"`
		SavingsRate6 []float64    `json:"savings_rate_ma6,omitempty"`
	}

	RecordCounts struct {
		Accounts     int `json:"accounts"`
		Categories   int `json:"categories"`
		Payees       int `json:"payees"`
		Transactions int `json:"transactions"`
	}

	SkippedCounts struct {
		Accounts   int `json:"accounts"`
		Categories int `json:"categories"`
	}

	PeriodSpan struct {
		Count int        `json:"count"`
		First core.Month `json:"first"`
		Last  core.Month `json:"last"`
	}

	RefreshStatus struct {
		Runs      int64     `json:"runs"`
		Failures  int64     `json:"failures"`
		LastRun   time.Time `json:"last_run"`
		LastRunID string    `json:"last_run_id,omitempty"`
	}

	Summary struct {
		GeneratedAt time.Time     `json:"generated_at"`
		Empty       bool          `json:"empty"`
		Periods     PeriodSpan    `json:"periods"`
		Records     RecordCounts  `json:"records"`
		Skipped     SkippedCounts `json:"skipped"`
		Refresh     RefreshStatus `json:"refresh"`
	}

	Dashboard struct {
		GeneratedAt   time.Time           `json:"generated_at"`
		Empty         bool                `json:"empty"`
		Periods       []core.Month        `json:"periods"`
		AccountGroups map[string][]string `json:"account_groups"`
		AcctGroupSort []string            `json:"acct_group_sort"`
		Records       RecordCounts        `json:"records"`
		Skipped       SkippedCounts       `json:"skipped"`
		NetWorth      NetWorthView        `json:"net_worth"`
		Cashflow      CashflowView        `json:"cashflow"`
		Metrics       MetricsView         `json:"metrics"`

		// Per entity monthly sums keyed by display name. Category
		// flows align to the trimmed cashflow periods.
		AccountFlows  map[string][]float64 `json:"account_flows"`
		CategoryFlows map[string][]float64 `json:"category_flows"`
	}
)

func seriesFloats(s report.Series) []float64 {
	if s == nil {
		return nil
	}
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = v.InexactFloat64()
	}
	return out
}

func groupFloats(groups map[string]report.Series) map[string][]float64 {
	out := make(map[string][]float64, len(groups))
	for name, series := range groups {
		out[name] = seriesFloats(series)
	}
	return out
}

func seriesView(s report.Smoothed) SeriesView {
	return SeriesView{
		Monthly: seriesFloats(s.Monthly),
		MA6:     seriesFloats(s.MA6),
		MA12:    seriesFloats(s.MA12),
	}
}

func groupViews(groups map[string]report.Smoothed) map[string]SeriesView {
	out := make(map[string]SeriesView, len(groups))
	for name, s := range groups {
		out[name] = seriesView(s)
	}
	return out
}

func netWorthView(nw report.NetWorth) NetWorthView {
	return NetWorthView{
		Periods: nw.Periods,
		Groups:  groupFloats(nw.Groups),
		Order:   nw.Order,
		All:     seriesFloats(nw.All),
		Assets:  seriesFloats(nw.Assets),
		Debts:   seriesFloats(nw.Debts),
	}
}

func cashflowView(cf report.Cashflow) CashflowView {
	return CashflowView{
		Periods:  cf.Periods,
		Groups:   groupViews(cf.Groups),
		Income:   seriesView(cf.Income),
		Expenses: seriesView(cf.Expenses),
		Diff:     seriesView(cf.Diff),
	}
}

func metricsView(m report.Metrics) MetricsView {
	return MetricsView{
		Periods:      m.Periods,
		SavingsRate:  seriesFloats(m.SavingsRate),
		SavingsRate6: seriesFloats(m.SavingsRate6),
	}
}

func accountViews(snap *report.Snapshot) []AccountView {
	out := make([]AccountView, len(snap.Accounts))
	for i, a := range snap.Accounts {
		out[i] = AccountView{ID: a.ID, Name: a.Name, Balance: a.Balance.InexactFloat64()}
	}
	return out
}

func categoryViews(snap *report.Snapshot) []CategoryView {
	out := make([]CategoryView, len(snap.Categories))
	for i, c := range snap.Categories {
		out[i] = CategoryView{ID: c.ID, Name: c.Name, GroupID: c.GroupID, IsIncome: c.IsIncome}
	}
	return out
}

func payeeViews(snap *report.Snapshot) []PayeeView {
	out := make([]PayeeView, len(snap.Payees))
	for i, p := range snap.Payees {
		out[i] = PayeeView{ID: p.ID, Name: p.Name}
	}
	return out
}

func transactionViews(txs []core.Transaction) []TransactionView {
	out := make([]TransactionView, len(txs))
	for i, tx := range txs {
		out[i] = TransactionView{
			ID:         tx.ID,
			Account:    tx.Account,
			Category:   tx.Category,
			Payee:      tx.Payee,
			TransferID: tx.TransferID,
			Date:       tx.Date.String(),
			Month:      tx.Date.Month(),
			Amount:     tx.Amount.InexactFloat64(),
		}
	}
	return out
}

// flowViews flattens per entity period buckets into monthly sums,
// keyed by display name. Entities missing from names keep their id.
func flowViews(flows report.MonthlyFlows, names map[string]string) map[string][]float64 {
	out := make(map[string][]float64, len(flows.ByID))
	for id, buckets := range flows.ByID {
		sums := make([]float64, len(buckets))
		for i, b := range buckets {
			sums[i] = b.Sum.InexactFloat64()
		}
		key, ok := names[id]
		if !ok {
			key = id
		}
		out[key] = sums
	}
	return out
}

func accountNames(snap *report.Snapshot) map[string]string {
	names := make(map[string]string)
	if snap == nil {
		return names
	}
	for _, a := range snap.Accounts {
		names[a.ID] = a.Name
	}
	return names
}

func categoryNames(snap *report.Snapshot) map[string]string {
	names := make(map[string]string)
	if snap == nil {
		return names
	}
	for _, c := range snap.Categories {
		names[c.ID] = c.Name
	}
	return names
}

func recordCounts(snap *report.Snapshot) RecordCounts {
	if snap == nil {
		return RecordCounts{}
	}
	return RecordCounts{
		Accounts:     len(snap.Accounts),
		Categories:   len(snap.Categories),
		Payees:       len(snap.Payees),
		Transactions: len(snap.Transactions),
	}
}

func periodSpan(periods []core.Month) PeriodSpan {
	span := PeriodSpan{Count: len(periods)}
	if len(periods) > 0 {
		span.First = periods[0]
		span.Last = periods[len(periods)-1]
	}
	return span
}

func refreshStatus(stats worker.Stats) RefreshStatus {
	return RefreshStatus{
		Runs:      stats.Runs,
		Failures:  stats.Failures,
		LastRun:   stats.LastRun,
		LastRunID: stats.LastRunID,
	}
}

// NewSummary bundles report, snapshot and refresh state into the
// summary the API serves.
func NewSummary(rep *report.Report, snap *report.Snapshot, stats worker.Stats) Summary {
	return Summary{
		GeneratedAt: rep.GeneratedAt,
		Empty:       rep.Empty,
		Periods:     periodSpan(rep.Periods),
		Records:     recordCounts(snap),
		Skipped:     SkippedCounts{Accounts: rep.SkippedAccounts, Categories: rep.SkippedCategories},
		Refresh:     refreshStatus(stats),
	}
}

// NewDashboard bundles a whole report run, the applied group
// configuration included.
func NewDashboard(rep *report.Report, snap *report.Snapshot, opts report.Options) Dashboard {
	groups := opts.AccountGroups
	if groups == nil {
		groups = map[string][]string{}
	}
	return Dashboard{
		GeneratedAt:   rep.GeneratedAt,
		Empty:         rep.Empty,
		Periods:       rep.Periods,
		AccountGroups: groups,
		AcctGroupSort: opts.GroupSort,
		Records:       recordCounts(snap),
		Skipped:       SkippedCounts{Accounts: rep.SkippedAccounts, Categories: rep.SkippedCategories},
		NetWorth:      netWorthView(rep.NetWorth),
		Cashflow:      cashflowView(rep.Cashflow),
		Metrics:       metricsView(rep.Metrics),
		AccountFlows:  flowViews(rep.AccountFlows, accountNames(snap)),
		CategoryFlows: flowViews(rep.CategoryFlows, categoryNames(snap)),
	}
}
