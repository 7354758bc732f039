package persistence

import (
	"context"

	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/erp/reconciler/internal/infrastructure/persistence/models"
	"github.com/erp/reconciler/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAuditLogRepository implements shared.AuditLogRepository using GORM
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository creates a new GormAuditLogRepository
func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Append writes an audit entry
func (r *GormAuditLogRepository) Append(ctx context.Context, entry *shared.AuditEntry) error {
	return r.db.WithContext(ctx).Create(models.AuditLogModelFromDomain(entry)).Error
}

// FindByEntity returns an entity's audit trail, oldest first
func (r *GormAuditLogRepository) FindByEntity(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID) ([]shared.AuditEntry, error) {
	var rows []models.AuditLogModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at, id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]shared.AuditEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, nil
}
