package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductRepository defines stock access for products
type ProductRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)
	Save(ctx context.Context, product *Product) error
	// AdjustStock atomically adds deltaBaseUnits to the product's stock
	// (UPDATE ... SET stock = stock + delta). Returns NotFound when the
	// product does not exist in the tenant.
	AdjustStock(ctx context.Context, tenantID, productID uuid.UUID, deltaBaseUnits decimal.Decimal) error
}

// InventoryTransactionRepository persists stock movement records
type InventoryTransactionRepository interface {
	Create(ctx context.Context, tx *InventoryTransaction) error
	FindBySource(ctx context.Context, tenantID uuid.UUID, sourceType SourceType, sourceID uuid.UUID) ([]InventoryTransaction, error)
}

// DamageInventoryRepository maintains the damage ledger
type DamageInventoryRepository interface {
	// Upsert adds quantity to the (tenant, product, branch) row, creating it if absent
	Upsert(ctx context.Context, tenantID, productID, branchID uuid.UUID, quantity decimal.Decimal) error
	Find(ctx context.Context, tenantID, productID, branchID uuid.UUID) (*DamageInventory, error)
}

// DamageCategoryRepository looks up damage categories
type DamageCategoryRepository interface {
	// FindByIDs returns the tenant's categories keyed by ID; foreign IDs are absent from the map
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*DamageCategory, error)
	Save(ctx context.Context, category *DamageCategory) error
}
