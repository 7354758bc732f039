package partner

import (
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeCustomer = "Customer"

// Event type constants
const (
	EventTypeCustomerBalanceRecalculated = "CustomerBalanceRecalculated"
)

// CustomerBalanceRecalculatedEvent is published when a recalculation changed the stored balance
type CustomerBalanceRecalculatedEvent struct {
	shared.BaseDomainEvent
	CustomerID      uuid.UUID       `json:"customer_id"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	NewBalance      decimal.Decimal `json:"new_balance"`
}

// NewCustomerBalanceRecalculatedEvent creates a new CustomerBalanceRecalculatedEvent
func NewCustomerBalanceRecalculatedEvent(c *Customer, previous decimal.Decimal) *CustomerBalanceRecalculatedEvent {
	return &CustomerBalanceRecalculatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerBalanceRecalculated, AggregateTypeCustomer, c.ID, c.TenantID),
		CustomerID:      c.ID,
		PreviousBalance: previous,
		NewBalance:      c.PendingBalance,
	}
}

// Delta returns how much the balance moved
func (e *CustomerBalanceRecalculatedEvent) Delta() decimal.Decimal {
	return e.NewBalance.Sub(e.PreviousBalance)
}
