package persistence

import (
	"context"
	"errors"

	"github.com/erp/reconciler/internal/domain/finance"
	"github.com/erp/reconciler/internal/infrastructure/persistence/models"
	"github.com/erp/reconciler/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormExpenseRepository implements finance.ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

func (r *GormExpenseRepository) findCategory(ctx context.Context, tenantID uuid.UUID, name string) (*models.ExpenseCategoryModel, error) {
	var model models.ExpenseCategoryModel
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("name = ?", name).
		First(&model).Error
	if err != nil {
		return nil, err
	}
	return &model, nil
}

// FindOrCreateCategory returns the tenant's category with the given name.
// Concurrent creators race on the (tenant_id, name) unique index; the loser
// reads the winner's row.
func (r *GormExpenseRepository) FindOrCreateCategory(ctx context.Context, tenantID uuid.UUID, name string) (*finance.ExpenseCategory, error) {
	model, err := r.findCategory(ctx, tenantID, name)
	if err == nil {
		return model.ToDomain(), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := models.ExpenseCategoryModelFromDomain(finance.NewExpenseCategory(tenantID, name))
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "name"}},
			DoNothing: true,
		}).
		Create(created).Error; err != nil {
		return nil, err
	}

	model, err = r.findCategory(ctx, tenantID, name)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save persists a new expense
func (r *GormExpenseRepository) Save(ctx context.Context, expense *finance.Expense) error {
	return r.db.WithContext(ctx).Create(models.ExpenseModelFromDomain(expense)).Error
}

// FindBySource lists expenses created by a source document
func (r *GormExpenseRepository) FindBySource(ctx context.Context, tenantID uuid.UUID, sourceType string, sourceID uuid.UUID) ([]finance.Expense, error) {
	var rows []models.ExpenseModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("source_type = ? AND source_id = ?", sourceType, sourceID).
		Order("created_at, id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	expenses := make([]finance.Expense, len(rows))
	for i := range rows {
		expenses[i] = *rows[i].ToDomain()
	}
	return expenses, nil
}
