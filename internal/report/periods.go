package report

import (
	"time"

	"actualboard/internal/core"
)

// PeriodRange returns the contiguous months covered by txs, from the
// earliest transaction month through the latest. Months with no
// transactions still get a slot. An empty transaction set yields a
// single period holding now's month, so every downstream series has
// at least one point.
func PeriodRange(txs []core.Transaction, now time.Time) []core.Month {
	if len(txs) == 0 {
		return []core.Month{core.MonthOf(now)}
	}
	first := txs[0].Date.Month()
	last := first
	for _, tx := range txs[1:] {
		m := tx.Date.Month()
		if m < first {
			first = m
		}
		if m > last {
			last = m
		}
	}
	return core.MonthsBetween(first, last)
}
