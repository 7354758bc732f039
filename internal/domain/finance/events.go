package finance

import (
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypePayment = "Payment"

// Event type constants
const (
	EventTypePaymentRecorded = "PaymentRecorded"
	EventTypePaymentVoided   = "PaymentVoided"
)

// PaymentRecordedEvent is published when a collection or refund is recorded
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID    uuid.UUID       `json:"payment_id"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	Amount       decimal.Decimal `json:"amount"`
	Status       PaymentStatus   `json:"status"`
	SaleReturnID *uuid.UUID      `json:"sale_return_id,omitempty"`
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypePayment, p.ID, p.TenantID),
		PaymentID:       p.ID,
		CustomerID:      p.CustomerID,
		Amount:          p.Amount,
		Status:          p.Status,
		SaleReturnID:    p.SaleReturnID,
	}
}

// PaymentVoidedEvent is published when a payment is voided
type PaymentVoidedEvent struct {
	shared.BaseDomainEvent
	PaymentID  uuid.UUID       `json:"payment_id"`
	CustomerID uuid.UUID       `json:"customer_id"`
	Amount     decimal.Decimal `json:"amount"`
	Reason     string          `json:"reason"`
}

// NewPaymentVoidedEvent creates a new PaymentVoidedEvent
func NewPaymentVoidedEvent(p *Payment) *PaymentVoidedEvent {
	return &PaymentVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentVoided, AggregateTypePayment, p.ID, p.TenantID),
		PaymentID:       p.ID,
		CustomerID:      p.CustomerID,
		Amount:          p.Amount,
		Reason:          p.VoidReason,
	}
}
