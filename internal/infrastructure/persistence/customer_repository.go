package persistence

import (
	"context"
	"time"

	"github.com/erp/reconciler/internal/domain/partner"
	"github.com/erp/reconciler/internal/infrastructure/persistence/models"
	"github.com/erp/reconciler/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCustomerRepository implements partner.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by ID within a tenant
func (r *GormCustomerRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "Customer %s not found", id)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a customer and takes a row lock (SELECT ... FOR UPDATE).
// Recalculations serialize on it so ledger totals are read after any
// concurrent writer for the same customer has committed.
func (r *GormCustomerRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.Scope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "Customer %s not found", id)
	}
	return model.ToDomain(), nil
}

// ListIDs returns every customer ID of the tenant ordered by ID
func (r *GormCustomerRepository) ListIDs(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.CustomerModel{}).
		Scopes(tenant.Scope(tenantID)).
		Order("id").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Save creates or updates a customer
func (r *GormCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	return r.db.WithContext(ctx).Save(models.CustomerModelFromDomain(customer)).Error
}

// SaveBalances writes only the cached balance columns. Other customer fields
// are owned by the partner module and never touched here.
func (r *GormCustomerRepository) SaveBalances(ctx context.Context, customer *partner.Customer) error {
	result := r.db.WithContext(ctx).
		Model(&models.CustomerModel{}).
		Scopes(tenant.Scope(customer.TenantID)).
		Where("id = ?", customer.ID).
		Updates(map[string]any{
			"total_sales":             customer.TotalSales,
			"total_payments":          customer.TotalPayments,
			"pending_balance":         customer.PendingBalance,
			"balance":                 customer.Balance,
			"balance_recalculated_at": customer.BalanceRecalculatedAt,
			"updated_at":              time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFoundOr(gorm.ErrRecordNotFound, "Customer %s not found", customer.ID)
	}
	return nil
}
