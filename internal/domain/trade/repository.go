package trade

import (
	"context"

	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleRepository defines the interface for sale persistence
type SaleRepository interface {
	// FindByID loads the sale with its items, including soft-deleted sales
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Sale, error)
	// Create persists a new sale with its items
	Create(ctx context.Context, sale *Sale) error
	// MarkDeleted persists the soft-delete flag
	MarkDeleted(ctx context.Context, sale *Sale) error
}

// SaleReturnFilter narrows return listings
type SaleReturnFilter struct {
	shared.Filter
	CustomerID *uuid.UUID
	SaleID     *uuid.UUID
	Status     *ReturnStatus
}

// SaleReturnRepository defines the interface for sale return persistence
type SaleReturnRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*SaleReturn, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter SaleReturnFilter) ([]SaleReturn, int64, error)
	// ReturnedQuantities sums returned quantity per sale item across every
	// return of the sale, whatever its status.
	ReturnedQuantities(ctx context.Context, tenantID, saleID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
	// Create persists the header and its items
	Create(ctx context.Context, sr *SaleReturn) error
	// UpdateStatus persists status and approval fields, guarded by version
	UpdateStatus(ctx context.Context, sr *SaleReturn) error
	// Delete hard-deletes the return and its items
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	GenerateReturnNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}
