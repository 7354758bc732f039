package models

import (
	"time"

	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/google/uuid"
)

// AuditLogModel is an append-only audit row
type AuditLogModel struct {
	ID         uuid.UUID          `gorm:"type:uuid;primary_key"`
	TenantID   uuid.UUID          `gorm:"type:uuid;not null;index:idx_audit_entity,priority:1"`
	EntityType string             `gorm:"type:varchar(50);not null;index:idx_audit_entity,priority:2"`
	EntityID   uuid.UUID          `gorm:"type:uuid;not null;index:idx_audit_entity,priority:3"`
	Action     shared.AuditAction `gorm:"type:varchar(20);not null"`
	ActorID    *uuid.UUID         `gorm:"type:uuid"`
	Details    string             `gorm:"type:text"`
	CreatedAt  time.Time          `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// ToDomain converts the persistence model to a domain AuditEntry
func (m *AuditLogModel) ToDomain() shared.AuditEntry {
	return shared.AuditEntry{
		ID:         m.ID,
		TenantID:   m.TenantID,
		EntityType: m.EntityType,
		EntityID:   m.EntityID,
		Action:     m.Action,
		ActorID:    m.ActorID,
		Details:    m.Details,
		CreatedAt:  m.CreatedAt,
	}
}

// AuditLogModelFromDomain creates a persistence model from a domain AuditEntry
func AuditLogModelFromDomain(e *shared.AuditEntry) *AuditLogModel {
	return &AuditLogModel{
		ID:         e.ID,
		TenantID:   e.TenantID,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Action:     e.Action,
		ActorID:    e.ActorID,
		Details:    e.Details,
		CreatedAt:  e.CreatedAt,
	}
}

// All returns every model, in dependency order, for AutoMigrate in tests
func All() []any {
	return []any{
		&TenantModel{},
		&TenantSettingModel{},
		&CustomerModel{},
		&ProductModel{},
		&SaleModel{},
		&SaleItemModel{},
		&SaleReturnModel{},
		&SaleReturnItemModel{},
		&PaymentModel{},
		&CreditNoteModel{},
		&ExpenseCategoryModel{},
		&ExpenseModel{},
		&InventoryTransactionModel{},
		&DamageInventoryModel{},
		&DamageCategoryModel{},
		&AuditLogModel{},
	}
}
