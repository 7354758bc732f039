package inventory

import (
	"time"

	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DamageCategory is a tenant-scoped policy describing what happens to goods
// returned under it. A return line without an explicit condition falls back
// to its category: stock is restored only when AffectsStock && IsResaleable.
type DamageCategory struct {
	shared.BaseEntity
	TenantID     uuid.UUID
	Name         string
	AffectsStock bool
	IsResaleable bool
}

// NewDamageCategory creates a damage category
func NewDamageCategory(tenantID uuid.UUID, name string, affectsStock, isResaleable bool) (*DamageCategory, error) {
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Damage category name cannot be empty")
	}
	return &DamageCategory{
		BaseEntity:   shared.NewBaseEntity(),
		TenantID:     tenantID,
		Name:         name,
		AffectsStock: affectsStock,
		IsResaleable: isResaleable,
	}, nil
}

// RestoresStock reports whether goods in this category go back to sellable stock
func (c *DamageCategory) RestoresStock() bool {
	return c.AffectsStock && c.IsResaleable
}

// DamageInventory is the cumulative quantity of damaged returned goods per
// (tenant, product, branch). It is never part of sellable stock.
type DamageInventory struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	ProductID uuid.UUID
	BranchID  uuid.UUID
	Quantity  decimal.Decimal
	UpdatedAt time.Time
}
