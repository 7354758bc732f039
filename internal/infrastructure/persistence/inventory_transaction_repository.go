package persistence

import (
	"context"

	"github.com/erp/reconciler/internal/domain/inventory"
	"github.com/erp/reconciler/internal/infrastructure/persistence/models"
	"github.com/erp/reconciler/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInventoryTransactionRepository implements inventory.InventoryTransactionRepository using GORM
type GormInventoryTransactionRepository struct {
	db *gorm.DB
}

// NewGormInventoryTransactionRepository creates a new GormInventoryTransactionRepository
func NewGormInventoryTransactionRepository(db *gorm.DB) *GormInventoryTransactionRepository {
	return &GormInventoryTransactionRepository{db: db}
}

// Create persists a stock movement
func (r *GormInventoryTransactionRepository) Create(ctx context.Context, tx *inventory.InventoryTransaction) error {
	return r.db.WithContext(ctx).Create(models.InventoryTransactionModelFromDomain(tx)).Error
}

// FindBySource lists the movements recorded for a source document
func (r *GormInventoryTransactionRepository) FindBySource(ctx context.Context, tenantID uuid.UUID, sourceType inventory.SourceType, sourceID uuid.UUID) ([]inventory.InventoryTransaction, error) {
	var rows []models.InventoryTransactionModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("source_type = ? AND source_id = ?", sourceType, sourceID).
		Order("created_at, id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	txs := make([]inventory.InventoryTransaction, len(rows))
	for i := range rows {
		txs[i] = *rows[i].ToDomain()
	}
	return txs, nil
}
