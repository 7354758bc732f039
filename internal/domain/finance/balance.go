package finance

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DriftTolerance is the largest absolute difference between a stored and a
// computed balance that is still considered consistent.
var DriftTolerance = decimal.NewFromFloat(0.01)

// LedgerTotals holds the four aggregates the balance formula is built from.
// All amounts are sums over one customer's ledger within one tenant:
//
//	TotalSales    = Σ Sale.GrandTotal         (not soft-deleted)
//	TotalPayments = Σ Payment.Amount          (CLEARED, not linked to a return)
//	TotalReturns  = Σ SaleReturn.GrandTotal    (APPROVED only)
//	RefundsPaid   = Σ Payment.Amount          (CLEARED, linked to a return)
type LedgerTotals struct {
	TotalSales    decimal.Decimal `json:"total_sales"`
	TotalPayments decimal.Decimal `json:"total_payments"`
	TotalReturns  decimal.Decimal `json:"total_returns"`
	RefundsPaid   decimal.Decimal `json:"refunds_paid"`
}

// PendingBalance applies the balance formula.
// Refunds are money paid out to the customer, so they are added back:
// TotalPayments deliberately excludes them.
func (t LedgerTotals) PendingBalance() decimal.Decimal {
	return t.TotalSales.
		Sub(t.TotalPayments).
		Sub(t.TotalReturns).
		Add(t.RefundsPaid)
}

// Drift compares a stored balance with the computed one
type Drift struct {
	Stored     decimal.Decimal `json:"stored"`
	Computed   decimal.Decimal `json:"computed"`
	Difference decimal.Decimal `json:"difference"`
}

// NewDrift builds a Drift; Difference is stored minus computed
func NewDrift(stored, computed decimal.Decimal) Drift {
	return Drift{
		Stored:     stored,
		Computed:   computed,
		Difference: stored.Sub(computed),
	}
}

// Exceeded reports whether the drift is beyond DriftTolerance
func (d Drift) Exceeded() bool {
	return d.Difference.Abs().GreaterThan(DriftTolerance)
}

// LedgerReader aggregates a customer's ledger primitives.
// Implementations must filter every sum by tenant.
type LedgerReader interface {
	LoadTotals(ctx context.Context, tenantID, customerID uuid.UUID) (LedgerTotals, error)
	// SumClearedCollectionsForSale sums CLEARED non-refund payments linked to a sale
	SumClearedCollectionsForSale(ctx context.Context, tenantID, saleID uuid.UUID) (decimal.Decimal, error)
}
