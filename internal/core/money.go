package core

import "github.com/shopspring/decimal"

// AmountFromCents converts a raw integer cent amount to currency
// units. The conversion is exact: 12345 cents is 123.45, not a float
// approximation.
func AmountFromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Shift(-2)
}

// Sum adds the amounts of the given transactions.
func Sum(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}
	return total
}
