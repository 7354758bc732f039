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
)

// GormProductRepository implements inventory.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by ID within a tenant
func (r *GormProductRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "Product %s not found", id)
	}
	return model.ToDomain(), nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *inventory.Product) error {
	return r.db.WithContext(ctx).Save(models.ProductModelFromDomain(product)).Error
}

// AdjustStock adds delta base units in a single UPDATE so concurrent
// adjustments never overwrite each other
func (r *GormProductRepository) AdjustStock(ctx context.Context, tenantID, productID uuid.UUID, deltaBaseUnits decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Scopes(tenant.Scope(tenantID)).
		Where("id = ?", productID).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock + ?", deltaBaseUnits),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFoundOr(gorm.ErrRecordNotFound, "Product %s not found", productID)
	}
	return nil
}
