package finance

import (
	"time"

	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditNoteStatus represents the status of a credit note
type CreditNoteStatus string

const (
	CreditNoteStatusUnused   CreditNoteStatus = "unused"   // Issued, not yet consumed
	CreditNoteStatusApplied  CreditNoteStatus = "applied"  // Offset against a later sale
	CreditNoteStatusRefunded CreditNoteStatus = "refunded" // Paid out to the customer
)

// IsValid checks if the status is a valid CreditNoteStatus
func (s CreditNoteStatus) IsValid() bool {
	switch s {
	case CreditNoteStatusUnused, CreditNoteStatusApplied, CreditNoteStatusRefunded:
		return true
	}
	return false
}

// IsTerminal returns true if the credit note can no longer change
func (s CreditNoteStatus) IsTerminal() bool {
	return s == CreditNoteStatusApplied || s == CreditNoteStatusRefunded
}

// CreditNote is issued when goods are returned against a fully paid sale.
// It records credit the customer holds; it does not itself enter the balance
// formula (the SaleReturn already does). Refunding it creates a refund Payment.
type CreditNote struct {
	shared.TenantAggregateRoot
	CreditNoteNumber string
	CustomerID       uuid.UUID
	SaleID           uuid.UUID
	SaleReturnID     uuid.UUID
	Amount           decimal.Decimal
	Status           CreditNoteStatus
	RefundPaymentID  *uuid.UUID
	RefundedAt       *time.Time
	AppliedAt        *time.Time
}

// NewCreditNote creates an unused credit note for a sale return
func NewCreditNote(tenantID uuid.UUID, number string, customerID, saleID, saleReturnID uuid.UUID, amount decimal.Decimal) (*CreditNote, error) {
	if number == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Credit note number cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Credit note amount must be positive")
	}
	return &CreditNote{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CreditNoteNumber:    number,
		CustomerID:          customerID,
		SaleID:              saleID,
		SaleReturnID:        saleReturnID,
		Amount:              amount,
		Status:              CreditNoteStatusUnused,
	}, nil
}

// MarkRefunded records that the note was paid out through the given refund payment
func (n *CreditNote) MarkRefunded(paymentID uuid.UUID) error {
	if n.Status != CreditNoteStatusUnused {
		return shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot refund credit note in %s status", n.Status)
	}
	now := time.Now()
	n.Status = CreditNoteStatusRefunded
	n.RefundPaymentID = &paymentID
	n.RefundedAt = &now
	n.Touch()
	n.IncrementVersion()
	return nil
}

// MarkApplied records that the note was consumed against a later sale
func (n *CreditNote) MarkApplied() error {
	if n.Status != CreditNoteStatusUnused {
		return shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot apply credit note in %s status", n.Status)
	}
	now := time.Now()
	n.Status = CreditNoteStatusApplied
	n.AppliedAt = &now
	n.Touch()
	n.IncrementVersion()
	return nil
}
