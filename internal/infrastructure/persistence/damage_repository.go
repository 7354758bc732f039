package persistence

import (
	"context"
	"time"

	"github.com/erp/reconciler/internal/domain/inventory"
	"github.com/erp/reconciler/internal/infrastructure/persistence/models"
	"github.com/erp/reconciler/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDamageInventoryRepository implements inventory.DamageInventoryRepository using GORM
type GormDamageInventoryRepository struct {
	db *gorm.DB
}

// NewGormDamageInventoryRepository creates a new GormDamageInventoryRepository
func NewGormDamageInventoryRepository(db *gorm.DB) *GormDamageInventoryRepository {
	return &GormDamageInventoryRepository{db: db}
}

// Upsert adds quantity to the (tenant, product, branch) row in one statement
func (r *GormDamageInventoryRepository) Upsert(ctx context.Context, tenantID, productID, branchID uuid.UUID, quantity decimal.Decimal) error {
	now := time.Now()
	row := &models.DamageInventoryModel{
		ID:        uuid.New(),
		TenantID:  tenantID,
		ProductID: productID,
		BranchID:  branchID,
		Quantity:  quantity,
		UpdatedAt: now,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}, {Name: "product_id"}, {Name: "branch_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("damage_inventory.quantity + excluded.quantity"),
				"updated_at": now,
			}),
		}).
		Create(row).Error
}

// Find returns the damage ledger row for (tenant, product, branch)
func (r *GormDamageInventoryRepository) Find(ctx context.Context, tenantID, productID, branchID uuid.UUID) (*inventory.DamageInventory, error) {
	var model models.DamageInventoryModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("product_id = ? AND branch_id = ?", productID, branchID).
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "No damaged stock for product %s", productID)
	}
	return model.ToDomain(), nil
}

// GormDamageCategoryRepository implements inventory.DamageCategoryRepository using GORM
type GormDamageCategoryRepository struct {
	db *gorm.DB
}

// NewGormDamageCategoryRepository creates a new GormDamageCategoryRepository
func NewGormDamageCategoryRepository(db *gorm.DB) *GormDamageCategoryRepository {
	return &GormDamageCategoryRepository{db: db}
}

// FindByIDs returns the tenant's categories among ids, keyed by ID
func (r *GormDamageCategoryRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*inventory.DamageCategory, error) {
	categories := make(map[uuid.UUID]*inventory.DamageCategory, len(ids))
	if len(ids) == 0 {
		return categories, nil
	}
	var rows []models.DamageCategoryModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		categories[rows[i].ID] = rows[i].ToDomain()
	}
	return categories, nil
}

// Save creates or updates a damage category
func (r *GormDamageCategoryRepository) Save(ctx context.Context, category *inventory.DamageCategory) error {
	return r.db.WithContext(ctx).Save(models.DamageCategoryModelFromDomain(category)).Error
}
