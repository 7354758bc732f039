package persistence

import (
	"context"

	"github.com/erp/reconciler/internal/domain/finance"
	"github.com/erp/reconciler/internal/infrastructure/persistence/models"
	"github.com/erp/reconciler/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCreditNoteRepository implements finance.CreditNoteRepository using GORM
type GormCreditNoteRepository struct {
	db *gorm.DB
}

// NewGormCreditNoteRepository creates a new GormCreditNoteRepository
func NewGormCreditNoteRepository(db *gorm.DB) *GormCreditNoteRepository {
	return &GormCreditNoteRepository{db: db}
}

// FindByID finds a credit note by ID within a tenant
func (r *GormCreditNoteRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.CreditNote, error) {
	var model models.CreditNoteModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "Credit note %s not found", id)
	}
	return model.ToDomain(), nil
}

// FindBySaleReturn finds the credit note issued for a return
func (r *GormCreditNoteRepository) FindBySaleReturn(ctx context.Context, tenantID, saleReturnID uuid.UUID) (*finance.CreditNote, error) {
	var model models.CreditNoteModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("sale_return_id = ?", saleReturnID).
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "No credit note for sale return %s", saleReturnID)
	}
	return model.ToDomain(), nil
}

// Save inserts a new credit note or updates it guarded by version
func (r *GormCreditNoteRepository) Save(ctx context.Context, note *finance.CreditNote) error {
	return saveVersioned(ctx, r.db, models.CreditNoteModelFromDomain(note), note.TenantID, note.ID, note.Version)
}

// GenerateNumber returns the next CN-YYYY-NNNNN number for the tenant
func (r *GormCreditNoteRepository) GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	return nextDocumentNumber(ctx, r.db, "credit_notes", "credit_note_number", "CN", tenantID)
}
