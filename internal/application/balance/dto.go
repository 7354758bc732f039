package balance

import (
	"time"

	"github.com/erp/reconciler/internal/domain/finance"
	"github.com/erp/reconciler/internal/domain/partner"
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerBalanceDTO is the result of a recalculation
type CustomerBalanceDTO struct {
	TenantID        uuid.UUID       `json:"tenant_id"`
	CustomerID      uuid.UUID       `json:"customer_id"`
	CustomerCode    string          `json:"customer_code"`
	CustomerName    string          `json:"customer_name"`
	TotalSales      decimal.Decimal `json:"total_sales"`
	TotalPayments   decimal.Decimal `json:"total_payments"`
	TotalReturns    decimal.Decimal `json:"total_returns"`
	RefundsPaid     decimal.Decimal `json:"refunds_paid"`
	PendingBalance  decimal.Decimal `json:"pending_balance"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	Changed         bool            `json:"changed"`
	RecalculatedAt  *time.Time      `json:"recalculated_at,omitempty"`
}

func toCustomerBalanceDTO(c *partner.Customer, totals finance.LedgerTotals, previous decimal.Decimal) *CustomerBalanceDTO {
	return &CustomerBalanceDTO{
		TenantID:        c.TenantID,
		CustomerID:      c.ID,
		CustomerCode:    c.Code,
		CustomerName:    c.Name,
		TotalSales:      totals.TotalSales,
		TotalPayments:   totals.TotalPayments,
		TotalReturns:    totals.TotalReturns,
		RefundsPaid:     totals.RefundsPaid,
		PendingBalance:  c.PendingBalance,
		PreviousBalance: previous,
		Changed:         !previous.Equal(c.PendingBalance),
		RecalculatedAt:  c.BalanceRecalculatedAt,
	}
}

// DriftResult compares one customer's stored balance with the formula
type DriftResult struct {
	TenantID     uuid.UUID            `json:"tenant_id"`
	CustomerID   uuid.UUID            `json:"customer_id"`
	CustomerCode string               `json:"customer_code"`
	CustomerName string               `json:"customer_name"`
	Stored       decimal.Decimal      `json:"stored"`
	Computed     decimal.Decimal      `json:"computed"`
	Difference   decimal.Decimal      `json:"difference"`
	Drifted      bool                 `json:"drifted"`
	Repaired     bool                 `json:"repaired"`
	Totals       finance.LedgerTotals `json:"totals"`
}

// Err returns a DRIFT_DETECTED error when the customer has drifted
func (r *DriftResult) Err() error {
	if !r.Drifted {
		return nil
	}
	return shared.NewDomainErrorf(shared.CodeDriftDetected,
		"Customer %s balance drifted: stored %s, computed %s, difference %s",
		r.CustomerCode, r.Stored.StringFixed(2), r.Computed.StringFixed(2), r.Difference.StringFixed(2))
}

func newDriftResult(c *partner.Customer, totals finance.LedgerTotals) *DriftResult {
	drift := c.DriftFrom(totals)
	return &DriftResult{
		TenantID:     c.TenantID,
		CustomerID:   c.ID,
		CustomerCode: c.Code,
		CustomerName: c.Name,
		Stored:       drift.Stored,
		Computed:     drift.Computed,
		Difference:   drift.Difference,
		Drifted:      drift.Exceeded(),
		Totals:       totals,
	}
}

// RepairFailure records a customer whose repair failed
type RepairFailure struct {
	CustomerID uuid.UUID `json:"customer_id"`
	Error      string    `json:"error"`
}

// DriftReport summarizes a tenant-wide drift check or repair
type DriftReport struct {
	TenantID         uuid.UUID       `json:"tenant_id"`
	CheckedAt        time.Time       `json:"checked_at"`
	CustomersChecked int             `json:"customers_checked"`
	Drifted          []DriftResult   `json:"drifted"`
	TotalDrift       decimal.Decimal `json:"total_drift"`
	Repaired         int             `json:"repaired"`
	Failures         []RepairFailure `json:"failures,omitempty"`
}

// HasDrift returns true if any customer drifted
func (r *DriftReport) HasDrift() bool {
	return len(r.Drifted) > 0
}
