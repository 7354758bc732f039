package persistence

import (
	"context"

	"github.com/erp/reconciler/internal/domain/finance"
	"github.com/erp/reconciler/internal/infrastructure/persistence/models"
	"github.com/erp/reconciler/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRepository implements finance.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by ID within a tenant
func (r *GormPaymentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "Payment %s not found", id)
	}
	return model.ToDomain(), nil
}

// FindBySaleReturn lists the refund payments of a return, any status
func (r *GormPaymentRepository) FindBySaleReturn(ctx context.Context, tenantID, saleReturnID uuid.UUID) ([]finance.Payment, error) {
	var rows []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("sale_return_id = ?", saleReturnID).
		Order("paid_at, id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	payments := make([]finance.Payment, len(rows))
	for i := range rows {
		payments[i] = *rows[i].ToDomain()
	}
	return payments, nil
}

// Save inserts a new payment or updates it guarded by version
func (r *GormPaymentRepository) Save(ctx context.Context, payment *finance.Payment) error {
	return saveVersioned(ctx, r.db, models.PaymentModelFromDomain(payment), payment.TenantID, payment.ID, payment.Version)
}
