package finance

import (
	"fmt"
	"time"

	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the settlement status of a payment
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusCleared PaymentStatus = "CLEARED"
	PaymentStatusFailed  PaymentStatus = "FAILED"
	PaymentStatusVoided  PaymentStatus = "VOIDED"
)

// IsValid checks if the status is a known value
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCleared, PaymentStatusFailed, PaymentStatusVoided:
		return true
	}
	return false
}

// String returns the string representation
func (s PaymentStatus) String() string {
	return string(s)
}

// Payment is money received from (collection) or paid to (refund) a customer.
// A payment linked to a SaleReturn is a refund.
type Payment struct {
	shared.TenantAggregateRoot
	CustomerID   uuid.UUID
	Amount       decimal.Decimal
	Status       PaymentStatus
	SaleID       *uuid.UUID
	SaleReturnID *uuid.UUID
	Method       string
	Reference    string
	PaidAt       time.Time
	VoidedAt     *time.Time
	VoidReason   string
}

// NewPayment creates a collection payment
func NewPayment(tenantID, customerID uuid.UUID, amount decimal.Decimal, status PaymentStatus) (*Payment, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Customer ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Payment amount must be positive")
	}
	if !status.IsValid() {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Invalid payment status: %s", status)
	}
	p := &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CustomerID:          customerID,
		Amount:              amount,
		Status:              status,
		PaidAt:              time.Now(),
	}
	p.AddDomainEvent(NewPaymentRecordedEvent(p))
	return p, nil
}

// NewRefundPayment creates a refund payment paid out against a sale return
func NewRefundPayment(tenantID, customerID, saleReturnID uuid.UUID, amount decimal.Decimal) (*Payment, error) {
	if saleReturnID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Refund must reference a sale return")
	}
	p, err := NewPayment(tenantID, customerID, amount, PaymentStatusCleared)
	if err != nil {
		return nil, err
	}
	p.SaleReturnID = &saleReturnID
	return p, nil
}

// LinkSale attaches the payment to a sale
func (p *Payment) LinkSale(saleID uuid.UUID) {
	p.SaleID = &saleID
}

// IsRefund reports whether the payment is money paid out against a return
func (p *Payment) IsRefund() bool {
	return p.SaleReturnID != nil
}

// IsCleared reports whether the payment counts towards the balance
func (p *Payment) IsCleared() bool {
	return p.Status == PaymentStatusCleared
}

// Void marks the payment as voided. Voided payments drop out of the balance formula.
func (p *Payment) Void(reason string) error {
	if p.Status == PaymentStatusVoided {
		return shared.NewDomainError(shared.CodeInvalidState, "Payment is already voided")
	}
	now := time.Now()
	p.Status = PaymentStatusVoided
	p.VoidedAt = &now
	p.VoidReason = reason
	p.Touch()
	p.IncrementVersion()
	p.AddDomainEvent(NewPaymentVoidedEvent(p))
	return nil
}

// String returns a short description for logs
func (p *Payment) String() string {
	kind := "collection"
	if p.IsRefund() {
		kind = "refund"
	}
	return fmt.Sprintf("%s %s %s", kind, p.Amount.StringFixed(2), p.Status)
}
