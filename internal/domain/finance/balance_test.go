package finance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestLedgerTotals_PendingBalance(t *testing.T) {
	t.Run("sales minus collections minus returns plus refunds", func(t *testing.T) {
		totals := LedgerTotals{
			TotalSales:    d("1000"),
			TotalPayments: d("400"),
			TotalReturns:  d("150"),
			RefundsPaid:   d("50"),
		}
		assert.True(t, totals.PendingBalance().Equal(d("500")))
	})

	t.Run("empty ledger is zero", func(t *testing.T) {
		assert.True(t, LedgerTotals{}.PendingBalance().IsZero())
	})

	t.Run("walks through return and refund scenario", func(t *testing.T) {
		totals := LedgerTotals{TotalSales: d("1000"), TotalPayments: d("1000")}
		assert.True(t, totals.PendingBalance().IsZero())

		totals.TotalReturns = d("200")
		assert.True(t, totals.PendingBalance().Equal(d("-200")), "customer is in credit after the return")

		totals.RefundsPaid = d("200")
		assert.True(t, totals.PendingBalance().IsZero())
	})

	t.Run("refund adds back instead of reducing", func(t *testing.T) {
		asCollection := LedgerTotals{TotalSales: d("500"), TotalPayments: d("100")}
		asRefund := LedgerTotals{TotalSales: d("500"), RefundsPaid: d("100")}
		diff := asRefund.PendingBalance().Sub(asCollection.PendingBalance())
		assert.True(t, diff.Equal(d("200")))
	})
}

func TestDrift(t *testing.T) {
	tests := []struct {
		name     string
		stored   string
		computed string
		exceeded bool
	}{
		{"equal values", "100.00", "100.00", false},
		{"exactly at tolerance", "100.01", "100.00", false},
		{"just over tolerance", "100.02", "100.00", true},
		{"negative direction", "99.90", "100.00", true},
		{"sub cent noise", "100.004", "100.00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drift := NewDrift(d(tt.stored), d(tt.computed))
			assert.Equal(t, tt.exceeded, drift.Exceeded())
			assert.True(t, drift.Difference.Equal(d(tt.stored).Sub(d(tt.computed))))
		})
	}
}
