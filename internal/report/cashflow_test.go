package report

import (
	"testing"
	"time"

	"actualboard/internal/actual"
	"actualboard/internal/core"
)

// TestBuildCashflowIncomeGroup covers income classification: both
// categories of the group are income categories, so even the
// negative correction lands on the income side.
func TestBuildCashflowIncomeGroup(t *testing.T) {
	snap := mustSnapshot(t, actual.Records{
		Categories: []actual.Category{
			{ID: "c1", Name: "Salary", GroupID: "g-inc", IsIncome: true},
			{ID: "c2", Name: "Refunds", GroupID: "g-inc", IsIncome: true},
		},
		Transactions: []actual.Transaction{
			{ID: "t1", Account: "a1", Category: "c1", Date: "2024-01-05", Amount: 50000},
			{ID: "t2", Account: "a1", Category: "c2", Date: "2024-01-20", Amount: -10000},
		},
	})
	periods := PeriodRange(snap.Transactions, time.Now())
	flows := GroupByCategory(snap, snap.Transactions, periods)

	cf := BuildCashflow(snap, flows)

	assertSeries(t, "income", cf.Income.Monthly, "400")
	assertSeries(t, "expenses", cf.Expenses.Monthly, "0")
	assertSeries(t, "diff", cf.Diff.Monthly, "400")
	assertSeries(t, "g-inc", cf.Groups["g-inc"].Monthly, "400")
}

// A group with one non income member counts as expenses wholesale.
func TestBuildCashflowMixedGroupIsExpenses(t *testing.T) {
	snap := mustSnapshot(t, actual.Records{
		Categories: []actual.Category{
			{ID: "c1", Name: "Salary", GroupID: "g1", IsIncome: true},
			{ID: "c2", Name: "Side Costs", GroupID: "g1"},
		},
		Transactions: []actual.Transaction{
			{ID: "t1", Account: "a1", Category: "c1", Date: "2024-01-05", Amount: 50000},
			{ID: "t2", Account: "a1", Category: "c2", Date: "2024-01-20", Amount: -10000},
		},
	})
	periods := PeriodRange(snap.Transactions, time.Now())
	flows := GroupByCategory(snap, snap.Transactions, periods)

	cf := BuildCashflow(snap, flows)

	assertSeries(t, "income", cf.Income.Monthly, "0")
	assertSeries(t, "expenses", cf.Expenses.Monthly, "400")
	assertSeries(t, "diff", cf.Diff.Monthly, "400")
}

// Every cashflow series gets smoothed once six periods exist, the
// per group series included.
func TestBuildCashflowSmoothsEverySeries(t *testing.T) {
	recs := actual.Records{
		Categories: []actual.Category{
			{ID: "c1", Name: "Salary", GroupID: "g-inc", IsIncome: true},
		},
	}
	for i := 0; i < 7; i++ {
		month := time.Date(2024, time.January+time.Month(i), 5, 0, 0, 0, 0, time.UTC)
		recs.Transactions = append(recs.Transactions, actual.Transaction{
			ID:       string(rune('a' + i)),
			Account:  "a1",
			Category: "c1",
			Date:     month.Format("2006-01-02"),
			Amount:   int64(100000 * (i + 1)),
		})
	}
	snap := mustSnapshot(t, recs)
	periods := PeriodRange(snap.Transactions, time.Now())
	flows := GroupByCategory(snap, snap.Transactions, periods)

	cf := BuildCashflow(snap, flows)

	// Monthly values run 1000..7000; the trailing six month windows
	// average to 3500 and 4500.
	assertSeries(t, "income ma6", cf.Income.MA6, "3500", "4500")
	assertSeries(t, "diff ma6", cf.Diff.MA6, "3500", "4500")
	assertSeries(t, "g-inc ma6", cf.Groups["g-inc"].MA6, "3500", "4500")
	assertSeries(t, "expenses ma6", cf.Expenses.MA6, "0", "0")
	if cf.Diff.MA12 != nil || cf.Groups["g-inc"].MA12 != nil {
		t.Fatalf("expected no 12 month averages below twelve periods")
	}
}

func TestExcludeFromCashflow(t *testing.T) {
	snap := mustSnapshot(t, actual.Records{
		Payees: []actual.Payee{
			{ID: "p1", Name: "Market"},
			{ID: "p2", Name: "Broker"},
		},
		Transactions: []actual.Transaction{
			{ID: "t1", Account: "a1", Payee: "p1", Date: "2024-01-05", Amount: -1000},
			{ID: "t2", Account: "a1", TransferID: "t3", Date: "2024-01-10", Amount: -5000},
			{ID: "t3", Account: "a2", TransferID: "t2", Date: "2024-01-10", Amount: 5000},
			{ID: "t4", Account: "a1", Payee: "p2", Date: "2024-01-15", Amount: -2000},
		},
	})

	out := excludeFromCashflow(snap, snap.Transactions, []string{"Broker", "Nobody"})

	if len(out) != 1 {
		t.Fatalf("expected 1 surviving transaction, got %d", len(out))
	}
	if out[0].ID != "t1" {
		t.Fatalf("expected t1 to survive, got %s", out[0].ID)
	}
}

func TestMovingAverage(t *testing.T) {
	src := seriesOf("10", "20", "30", "40", "50", "60", "70")

	if got := movingAverage(src, 12); got != nil {
		t.Fatalf("expected nil below window size, got %v", got)
	}

	ma := movingAverage(src, 6)
	assertSeries(t, "ma6", ma, "35", "45")

	// A window the size of the series yields a single point.
	full := movingAverage(src, 7)
	assertSeries(t, "ma7", full, "40")

	// A constant series smooths to itself.
	flat := movingAverage(seriesOf("250", "250", "250", "250", "250", "250", "250"), 6)
	assertSeries(t, "flat ma6", flat, "250", "250")
}

func TestMovingAverageExactDivision(t *testing.T) {
	src := seriesOf("1", "2", "2", "1", "1", "2")
	ma := movingAverage(src, 6)
	assertSeries(t, "ma6", ma, "1.5")
}

func TestTrimPeriods(t *testing.T) {
	periods := []core.Month{"2024-01", "2024-02", "2024-03"}

	cases := []struct {
		first, last bool
		want        []core.Month
	}{
		{false, false, []core.Month{"2024-01", "2024-02", "2024-03"}},
		{true, false, []core.Month{"2024-02", "2024-03"}},
		{false, true, []core.Month{"2024-01", "2024-02"}},
		{true, true, []core.Month{"2024-02"}},
	}
	for i, tc := range cases {
		got := trimPeriods(periods, tc.first, tc.last)
		if len(got) != len(tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, got)
		}
		for j := range tc.want {
			if got[j] != tc.want[j] {
				t.Fatalf("case %d period %d: expected %s, got %s", i, j, tc.want[j], got[j])
			}
		}
	}

	// A single period never trims away.
	single := []core.Month{"2024-01"}
	if got := trimPeriods(single, true, true); len(got) != 1 {
		t.Fatalf("expected the last period to survive, got %v", got)
	}
}
