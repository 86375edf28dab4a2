package report

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"actualboard/internal/core"
)

// Account group names carrying these prefixes roll up into the
// assets and debts series. Groups without either prefix only count
// toward the overall total.
const (
	assetsPrefix = "assets_"
	debtsPrefix  = "liabilities_"
)

// Series holds one value per period, aligned to the report's period
// list.
type Series []decimal.Decimal

// NetWorth holds the cumulative balance series per configured
// account group, plus the all, assets and debts roll-ups across
// groups. Order is the display order for Groups.
type NetWorth struct {
	Periods []core.Month
	Groups  map[string]Series
	Order   []string
	All     Series
	Assets  Series
	Debts   Series
}

// BuildNetWorth turns per-account flows into one cumulative series
// per configured group. Groups list their member accounts by display
// name; names the snapshot does not know are skipped with a warning.
// Accounts outside every group stay out of net worth entirely.
func BuildNetWorth(snap *Snapshot, flows MonthlyFlows, groups map[string][]string, sortOrder []string) NetWorth {
	n := len(flows.Periods)
	nw := NetWorth{
		Periods: flows.Periods,
		Groups:  make(map[string]Series, len(groups)),
		All:     make(Series, n),
		Assets:  make(Series, n),
		Debts:   make(Series, n),
	}

	for name, members := range groups {
		series := make(Series, n)
		for _, member := range members {
			id, ok := snap.AccountIDByName(member)
			if !ok {
				slog.Warn("account group member not in dataset",
					"group", name,
					"account", member)
				continue
			}
			for i, bucket := range flows.ByID[id] {
				series[i] = series[i].Add(bucket.Sum)
			}
		}
		// Cumulative: each period carries the previous total forward.
		for i := 1; i < n; i++ {
			series[i] = series[i].Add(series[i-1])
		}
		nw.Groups[name] = series

		for i := range series {
			nw.All[i] = nw.All[i].Add(series[i])
		}
		switch {
		case strings.HasPrefix(name, assetsPrefix):
			for i := range series {
				nw.Assets[i] = nw.Assets[i].Add(series[i])
			}
		case strings.HasPrefix(name, debtsPrefix):
			for i := range series {
				nw.Debts[i] = nw.Debts[i].Add(series[i])
			}
		}
	}

	nw.Order = groupOrder(nw.Groups, sortOrder)
	return nw
}

// groupOrder keeps the configured display order for groups that
// exist and appends the rest alphabetically.
func groupOrder(groups map[string]Series, preferred []string) []string {
	order := make([]string, 0, len(groups))
	seen := make(map[string]bool, len(groups))
	for _, name := range preferred {
		if _, ok := groups[name]; ok && !seen[name] {
			order = append(order, name)
			seen[name] = true
		}
	}
	rest := make([]string, 0, len(groups))
	for name := range groups {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}
