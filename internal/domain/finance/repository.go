package finance

import (
	"context"

	"github.com/google/uuid"
)

// PaymentRepository defines the interface for payment persistence.
// Every method is tenant scoped.
type PaymentRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Payment, error)
	FindBySaleReturn(ctx context.Context, tenantID, saleReturnID uuid.UUID) ([]Payment, error)
	Save(ctx context.Context, payment *Payment) error
}

// CreditNoteRepository defines the interface for credit note persistence
type CreditNoteRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*CreditNote, error)
	FindBySaleReturn(ctx context.Context, tenantID, saleReturnID uuid.UUID) (*CreditNote, error)
	Save(ctx context.Context, note *CreditNote) error
	GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// ExpenseRepository defines the interface for expense persistence
type ExpenseRepository interface {
	// FindOrCreateCategory returns the tenant's category with the given name, creating it on first use
	FindOrCreateCategory(ctx context.Context, tenantID uuid.UUID, name string) (*ExpenseCategory, error)
	Save(ctx context.Context, expense *Expense) error
	FindBySource(ctx context.Context, tenantID uuid.UUID, sourceType string, sourceID uuid.UUID) ([]Expense, error)
}
