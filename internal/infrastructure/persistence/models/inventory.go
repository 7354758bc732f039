package models

import (
	"time"

	"github.com/erp/reconciler/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductModel is the stock-keeping view of a product. Stock is in base units.
type ProductModel struct {
	TenantAggregateModel
	Code             string          `gorm:"type:varchar(50);not null;index"`
	Name             string          `gorm:"type:varchar(200);not null"`
	Stock            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ConversionToBase decimal.Decimal `gorm:"type:decimal(18,6);not null;default:1"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *inventory.Product {
	return &inventory.Product{
		TenantAggregateRoot: m.tenantRoot(),
		Code:                m.Code,
		Name:                m.Name,
		Stock:               m.Stock,
		ConversionToBase:    m.ConversionToBase,
	}
}

// ProductModelFromDomain creates a persistence model from a domain Product
func ProductModelFromDomain(p *inventory.Product) *ProductModel {
	m := &ProductModel{
		Code:             p.Code,
		Name:             p.Name,
		Stock:            p.Stock,
		ConversionToBase: p.ConversionToBase,
	}
	m.fromTenantRoot(p.TenantAggregateRoot)
	return m
}

// InventoryTransactionModel is an immutable stock movement row
type InventoryTransactionModel struct {
	ID         uuid.UUID                 `gorm:"type:uuid;primary_key"`
	TenantID   uuid.UUID                 `gorm:"type:uuid;not null;index:idx_inv_tx_source,priority:1"`
	ProductID  uuid.UUID                 `gorm:"type:uuid;not null;index"`
	BranchID   *uuid.UUID                `gorm:"type:uuid"`
	Type       inventory.TransactionType `gorm:"type:varchar(20);not null"`
	Quantity   decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	SourceType inventory.SourceType      `gorm:"type:varchar(30);not null;index:idx_inv_tx_source,priority:2"`
	SourceID   uuid.UUID                 `gorm:"type:uuid;not null;index:idx_inv_tx_source,priority:3"`
	SourceLine *uuid.UUID                `gorm:"type:uuid"`
	Note       string                    `gorm:"type:text"`
	CreatedAt  time.Time                 `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InventoryTransactionModel) TableName() string {
	return "inventory_transactions"
}

// ToDomain converts the persistence model to a domain InventoryTransaction
func (m *InventoryTransactionModel) ToDomain() *inventory.InventoryTransaction {
	return &inventory.InventoryTransaction{
		ID:         m.ID,
		TenantID:   m.TenantID,
		ProductID:  m.ProductID,
		BranchID:   m.BranchID,
		Type:       m.Type,
		Quantity:   m.Quantity,
		SourceType: m.SourceType,
		SourceID:   m.SourceID,
		SourceLine: m.SourceLine,
		Note:       m.Note,
		CreatedAt:  m.CreatedAt,
	}
}

// InventoryTransactionModelFromDomain creates a persistence model from a domain InventoryTransaction
func InventoryTransactionModelFromDomain(t *inventory.InventoryTransaction) *InventoryTransactionModel {
	return &InventoryTransactionModel{
		ID:         t.ID,
		TenantID:   t.TenantID,
		ProductID:  t.ProductID,
		BranchID:   t.BranchID,
		Type:       t.Type,
		Quantity:   t.Quantity,
		SourceType: t.SourceType,
		SourceID:   t.SourceID,
		SourceLine: t.SourceLine,
		Note:       t.Note,
		CreatedAt:  t.CreatedAt,
	}
}

// DamageInventoryModel holds the damaged quantity per (tenant, product, branch)
type DamageInventoryModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_damage_inventory_key,priority:1"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_damage_inventory_key,priority:2"`
	BranchID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_damage_inventory_key,priority:3"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DamageInventoryModel) TableName() string {
	return "damage_inventory"
}

// ToDomain converts the persistence model to a domain DamageInventory
func (m *DamageInventoryModel) ToDomain() *inventory.DamageInventory {
	return &inventory.DamageInventory{
		ID:        m.ID,
		TenantID:  m.TenantID,
		ProductID: m.ProductID,
		BranchID:  m.BranchID,
		Quantity:  m.Quantity,
		UpdatedAt: m.UpdatedAt,
	}
}

// DamageCategoryModel is a tenant-scoped damage policy
type DamageCategoryModel struct {
	BaseModel
	TenantID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Name         string    `gorm:"type:varchar(100);not null"`
	AffectsStock bool      `gorm:"not null;default:false"`
	IsResaleable bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (DamageCategoryModel) TableName() string {
	return "damage_categories"
}

// ToDomain converts the persistence model to a domain DamageCategory
func (m *DamageCategoryModel) ToDomain() *inventory.DamageCategory {
	return &inventory.DamageCategory{
		BaseEntity:   m.BaseModel.entity(),
		TenantID:     m.TenantID,
		Name:         m.Name,
		AffectsStock: m.AffectsStock,
		IsResaleable: m.IsResaleable,
	}
}

// DamageCategoryModelFromDomain creates a persistence model from a domain DamageCategory
func DamageCategoryModelFromDomain(c *inventory.DamageCategory) *DamageCategoryModel {
	m := &DamageCategoryModel{
		TenantID:     c.TenantID,
		Name:         c.Name,
		AffectsStock: c.AffectsStock,
		IsResaleable: c.IsResaleable,
	}
	m.fromEntity(c.BaseEntity)
	return m
}
