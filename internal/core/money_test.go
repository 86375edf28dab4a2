package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAmountFromCents(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{10000, "100"},
		{-2000, "-20"},
		{1, "0.01"},
		{-1, "-0.01"},
		{0, "0"},
		{12345, "123.45"},
	}
	for i, tc := range cases {
		got := AmountFromCents(tc.cents)
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("case %d expected %s, got %s", i, tc.want, got)
		}
	}
}

func TestAmountFromCentsIsExact(t *testing.T) {
	// 0.1 + 0.2 style drift must not exist: a cent sum round trips to
	// the same cent count.
	total := decimal.Zero
	for i := 0; i < 1000; i++ {
		total = total.Add(AmountFromCents(10))
	}
	if !total.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("expected exactly 100, got %s", total)
	}
}

func TestSum(t *testing.T) {
	txs := []Transaction{
		{Amount: AmountFromCents(10000)},
		{Amount: AmountFromCents(-2000)},
		{Amount: AmountFromCents(5)},
	}
	if got := Sum(txs); !got.Equal(decimal.RequireFromString("80.05")) {
		t.Fatalf("expected 80.05, got %s", got)
	}
	if got := Sum(nil); !got.IsZero() {
		t.Fatalf("expected zero for empty input, got %s", got)
	}
}
