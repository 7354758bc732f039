package partner

import (
	"strings"
	"time"

	"github.com/erp/reconciler/internal/domain/finance"
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerStatus represents the status of a customer
type CustomerStatus string

const (
	CustomerStatusActive    CustomerStatus = "active"
	CustomerStatusInactive  CustomerStatus = "inactive"
	CustomerStatusSuspended CustomerStatus = "suspended" // Suspended due to credit issues
)

// Customer represents a customer in the partner context.
//
// TotalSales, TotalPayments, PendingBalance and Balance are a denormalized
// cache of the balance formula. They are only ever written through
// ApplyLedgerTotals; there is deliberately no method that adjusts them by a delta.
type Customer struct {
	shared.TenantAggregateRoot
	Code                  string
	Name                  string
	Status                CustomerStatus
	CreditLimit           decimal.Decimal
	TotalSales            decimal.Decimal
	TotalPayments         decimal.Decimal
	PendingBalance        decimal.Decimal
	Balance               decimal.Decimal // Mirror of PendingBalance for legacy display
	BalanceRecalculatedAt *time.Time
}

// NewCustomer creates a new customer with required fields
func NewCustomer(tenantID uuid.UUID, code, name string) (*Customer, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Customer code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Customer code cannot exceed 50 characters")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Customer name cannot be empty")
	}

	return &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                name,
		Status:              CustomerStatusActive,
		CreditLimit:         decimal.Zero,
		TotalSales:          decimal.Zero,
		TotalPayments:       decimal.Zero,
		PendingBalance:      decimal.Zero,
		Balance:             decimal.Zero,
	}, nil
}

// SetCreditLimit sets the customer's credit limit
func (c *Customer) SetCreditLimit(limit decimal.Decimal) error {
	if limit.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Credit limit cannot be negative")
	}
	c.CreditLimit = limit
	c.Touch()
	c.IncrementVersion()
	return nil
}

// ApplyLedgerTotals overwrites the cached aggregates with a fresh formula result.
// It returns true when PendingBalance changed.
func (c *Customer) ApplyLedgerTotals(totals finance.LedgerTotals) bool {
	previous := c.PendingBalance
	pending := totals.PendingBalance()

	now := time.Now()
	c.TotalSales = totals.TotalSales
	c.TotalPayments = totals.TotalPayments
	c.PendingBalance = pending
	c.Balance = pending
	c.BalanceRecalculatedAt = &now
	c.UpdatedAt = now

	changed := !previous.Equal(pending)
	if changed {
		c.AddDomainEvent(NewCustomerBalanceRecalculatedEvent(c, previous))
	}
	return changed
}

// DriftFrom compares the stored PendingBalance with freshly computed totals
func (c *Customer) DriftFrom(totals finance.LedgerTotals) finance.Drift {
	return finance.NewDrift(c.PendingBalance, totals.PendingBalance())
}

// IsActive returns true if the customer is active
func (c *Customer) IsActive() bool {
	return c.Status == CustomerStatusActive
}

// IsInCredit returns true when the business owes the customer money
func (c *Customer) IsInCredit() bool {
	return c.PendingBalance.IsNegative()
}

// AvailableCredit returns the remaining credit; zero limit means unlimited
// and is reported as zero available.
func (c *Customer) AvailableCredit() decimal.Decimal {
	if c.CreditLimit.IsZero() {
		return decimal.Zero
	}
	available := c.CreditLimit.Sub(c.PendingBalance)
	if available.IsNegative() {
		return decimal.Zero
	}
	return available
}
