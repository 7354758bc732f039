package finance

import (
	"time"

	"github.com/erp/reconciler/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordPaymentRequest represents a request to record a collection or a refund.
// Setting SaleReturnID makes the payment a refund paid out against that return.
type RecordPaymentRequest struct {
	CustomerID   uuid.UUID       `json:"customer_id" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required,money"`
	Status       string          `json:"status" binding:"omitempty,oneof=PENDING CLEARED FAILED"`
	SaleID       *uuid.UUID      `json:"sale_id"`
	SaleReturnID *uuid.UUID      `json:"sale_return_id"`
	Method       string          `json:"method" binding:"max=50"`
	Reference    string          `json:"reference" binding:"max=100"`
	CreatedBy    uuid.UUID       `json:"-"`
}

// VoidPaymentRequest represents a request to void a payment
type VoidPaymentRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID           uuid.UUID       `json:"id"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	Amount       decimal.Decimal `json:"amount"`
	Status       string          `json:"status"`
	IsRefund     bool            `json:"is_refund"`
	SaleID       *uuid.UUID      `json:"sale_id,omitempty"`
	SaleReturnID *uuid.UUID      `json:"sale_return_id,omitempty"`
	Method       string          `json:"method,omitempty"`
	Reference    string          `json:"reference,omitempty"`
	PaidAt       time.Time       `json:"paid_at"`
	VoidedAt     *time.Time      `json:"voided_at,omitempty"`
	VoidReason   string          `json:"void_reason,omitempty"`
	Version      int             `json:"version"`
}

// ToPaymentResponse converts a domain Payment to a response DTO
func ToPaymentResponse(p *finance.Payment) PaymentResponse {
	return PaymentResponse{
		ID:           p.ID,
		CustomerID:   p.CustomerID,
		Amount:       p.Amount,
		Status:       p.Status.String(),
		IsRefund:     p.IsRefund(),
		SaleID:       p.SaleID,
		SaleReturnID: p.SaleReturnID,
		Method:       p.Method,
		Reference:    p.Reference,
		PaidAt:       p.PaidAt,
		VoidedAt:     p.VoidedAt,
		VoidReason:   p.VoidReason,
		Version:      p.Version,
	}
}

// CreditNoteResponse represents a credit note in API responses
type CreditNoteResponse struct {
	ID               uuid.UUID        `json:"id"`
	CreditNoteNumber string           `json:"credit_note_number"`
	CustomerID       uuid.UUID        `json:"customer_id"`
	SaleID           uuid.UUID        `json:"sale_id"`
	SaleReturnID     uuid.UUID        `json:"sale_return_id"`
	Amount           decimal.Decimal  `json:"amount"`
	Status           string           `json:"status"`
	RefundPaymentID  *uuid.UUID       `json:"refund_payment_id,omitempty"`
	RefundedAt       *time.Time       `json:"refunded_at,omitempty"`
	RefundPayment    *PaymentResponse `json:"refund_payment,omitempty"`
}

// ToCreditNoteResponse converts a domain CreditNote to a response DTO
func ToCreditNoteResponse(n *finance.CreditNote) CreditNoteResponse {
	return CreditNoteResponse{
		ID:               n.ID,
		CreditNoteNumber: n.CreditNoteNumber,
		CustomerID:       n.CustomerID,
		SaleID:           n.SaleID,
		SaleReturnID:     n.SaleReturnID,
		Amount:           n.Amount,
		Status:           string(n.Status),
		RefundPaymentID:  n.RefundPaymentID,
		RefundedAt:       n.RefundedAt,
	}
}
