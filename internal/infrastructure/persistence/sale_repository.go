package persistence

import (
	"context"

	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/erp/reconciler/internal/domain/trade"
	"github.com/erp/reconciler/internal/infrastructure/persistence/models"
	"github.com/erp/reconciler/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSaleRepository implements trade.SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByID loads a sale with its items, soft-deleted sales included
func (r *GormSaleRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*trade.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Preload("Items").
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "Sale %s not found", id)
	}
	return model.ToDomain(), nil
}

// Create persists a new sale and its items
func (r *GormSaleRepository) Create(ctx context.Context, sale *trade.Sale) error {
	return r.db.WithContext(ctx).Create(models.SaleModelFromDomain(sale)).Error
}

// MarkDeleted persists the soft-delete flag, guarded by version
func (r *GormSaleRepository) MarkDeleted(ctx context.Context, sale *trade.Sale) error {
	result := r.db.WithContext(ctx).
		Model(&models.SaleModel{}).
		Scopes(tenant.Scope(sale.TenantID)).
		Where("id = ? AND version = ?", sale.ID, sale.Version-1).
		Updates(map[string]any{
			"is_deleted": sale.IsDeleted,
			"deleted_at": sale.DeletedAt,
			"version":    sale.Version,
			"updated_at": sale.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}
