package persistence

import (
	"context"
	"errors"

	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/erp/reconciler/internal/domain/trade"
	"github.com/erp/reconciler/internal/infrastructure/persistence/models"
	"github.com/erp/reconciler/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormSaleReturnRepository implements trade.SaleReturnRepository using GORM
type GormSaleReturnRepository struct {
	db *gorm.DB
}

// NewGormSaleReturnRepository creates a new GormSaleReturnRepository
func NewGormSaleReturnRepository(db *gorm.DB) *GormSaleReturnRepository {
	return &GormSaleReturnRepository{db: db}
}

func preloadReturnItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at, id")
	})
}

// FindByID loads a return with its items
func (r *GormSaleReturnRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*trade.SaleReturn, error) {
	var model models.SaleReturnModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID), preloadReturnItems).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "Sale return %s not found", id)
	}
	return model.ToDomain(), nil
}

// FindAll lists returns matching the filter and the total match count
func (r *GormSaleReturnRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter trade.SaleReturnFilter) ([]trade.SaleReturn, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SaleReturnModel{}).Scopes(tenant.Scope(tenantID))
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.SaleID != nil {
		query = query.Where("sale_id = ?", *filter.SaleID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		query = query.Where("return_number LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.SaleReturnModel
	if err := query.
		Scopes(preloadReturnItems).
		Order(saleReturnSort.orderBy(filter.OrderBy, filter.OrderDir)).
		Order("id").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	returns := make([]trade.SaleReturn, len(rows))
	for i := range rows {
		returns[i] = *rows[i].ToDomain()
	}
	return returns, total, nil
}

// ReturnedQuantities sums returned quantity per sale item over every return of the sale
func (r *GormSaleReturnRepository) ReturnedQuantities(ctx context.Context, tenantID, saleID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	var rows []struct {
		SaleItemID uuid.UUID       `gorm:"column:sale_item_id"`
		Quantity   decimal.Decimal `gorm:"column:quantity"`
	}
	if err := r.db.WithContext(ctx).
		Table("sale_return_items").
		Select("sale_return_items.sale_item_id, SUM(sale_return_items.quantity) AS quantity").
		Joins("JOIN sale_returns ON sale_returns.id = sale_return_items.return_id").
		Scopes(tenant.ScopeColumn("sale_returns.tenant_id", tenantID)).
		Where("sale_returns.sale_id = ?", saleID).
		Group("sale_return_items.sale_item_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	returned := make(map[uuid.UUID]decimal.Decimal, len(rows))
	for _, row := range rows {
		returned[row.SaleItemID] = row.Quantity
	}
	return returned, nil
}

// Create persists the return header and its items.
// A concurrent return that drew the same number violates the
// (tenant_id, return_number) index and surfaces as ErrConcurrencyConflict.
func (r *GormSaleReturnRepository) Create(ctx context.Context, sr *trade.SaleReturn) error {
	err := r.db.WithContext(ctx).Create(models.SaleReturnModelFromDomain(sr)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrConcurrencyConflict
	}
	return err
}

// UpdateStatus persists the status and approval fields. Items are immutable.
func (r *GormSaleReturnRepository) UpdateStatus(ctx context.Context, sr *trade.SaleReturn) error {
	result := r.db.WithContext(ctx).
		Model(&models.SaleReturnModel{}).
		Scopes(tenant.Scope(sr.TenantID)).
		Where("id = ? AND version = ?", sr.ID, sr.Version-1).
		Updates(map[string]any{
			"status":           sr.Status,
			"approved_by":      sr.ApprovedBy,
			"approved_at":      sr.ApprovedAt,
			"approval_note":    sr.ApprovalNote,
			"rejected_by":      sr.RejectedBy,
			"rejected_at":      sr.RejectedAt,
			"rejection_reason": sr.RejectionReason,
			"version":          sr.Version,
			"updated_at":       sr.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete hard-deletes a return and its items
func (r *GormSaleReturnRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	header := r.db.Model(&models.SaleReturnModel{}).
		Select("id").
		Scopes(tenant.Scope(tenantID)).
		Where("id = ?", id)
	if err := r.db.WithContext(ctx).
		Where("return_id IN (?)", header).
		Delete(&models.SaleReturnItemModel{}).Error; err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("id = ?", id).
		Delete(&models.SaleReturnModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NotFoundf("Sale return %s not found", id)
	}
	return nil
}

// GenerateReturnNumber returns the next SR-YYYY-NNNNN number for the tenant
func (r *GormSaleReturnRepository) GenerateReturnNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	return nextDocumentNumber(ctx, r.db, "sale_returns", "return_number", "SR", tenantID)
}
