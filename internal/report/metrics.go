package report

import (
	"github.com/shopspring/decimal"

	"actualboard/internal/core"
)

// minDenominator stands in for income in months with none, keeping
// the savings rate defined everywhere.
var minDenominator = decimal.New(1, -2) // 0.01

// Metrics carries the derived savings rate series. SavingsRate has
// one point per cashflow period. SavingsRate6 applies the same
// formula to the six period moving averages of income and expenses
// and stays nil until six periods exist.
type Metrics struct {
	Periods      []core.Month
	SavingsRate  Series
	SavingsRate6 Series
}

// BuildMetrics derives savings rates from the cashflow roll-ups. The
// rate for a period is 1 + expenses/income, expenses being negative,
// with income floored at 0.01.
func BuildMetrics(cf Cashflow) Metrics {
	m := Metrics{
		Periods:     cf.Periods,
		SavingsRate: savingsRate(cf.Income.Monthly, cf.Expenses.Monthly),
	}
	if cf.Income.MA6 != nil && cf.Expenses.MA6 != nil {
		m.SavingsRate6 = savingsRate(cf.Income.MA6, cf.Expenses.MA6)
	}
	return m
}

func savingsRate(income, expenses Series) Series {
	out := make(Series, len(income))
	one := decimal.NewFromInt(1)
	for i := range income {
		den := income[i]
		if den.IsZero() {
			den = minDenominator
		}
		out[i] = one.Add(expenses[i].Div(den))
	}
	return out
}
