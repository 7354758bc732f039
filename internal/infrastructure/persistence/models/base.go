package models

import (
	"time"

	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel holds the identity and timestamp columns every table has
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (m *BaseModel) entity() shared.BaseEntity {
	return shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

func (m *BaseModel) fromEntity(e shared.BaseEntity) {
	*m = BaseModel{ID: e.ID, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt}
}

// AggregateModel adds the optimistic-lock version column
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

func (m *AggregateModel) aggregate() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{BaseEntity: m.entity(), Version: m.Version}
}

func (m *AggregateModel) fromAggregate(a shared.BaseAggregateRoot) {
	m.fromEntity(a.BaseEntity)
	m.Version = a.Version
}

// TenantAggregateModel adds the tenant and creator columns of ledger tables.
// tenant_id is indexed on every table so that each query can be tenant scoped.
type TenantAggregateModel struct {
	AggregateModel
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid;index"`
}

func (m *TenantAggregateModel) tenantRoot() shared.TenantAggregateRoot {
	return shared.TenantAggregateRoot{
		BaseAggregateRoot: m.aggregate(),
		TenantID:          m.TenantID,
		CreatedBy:         m.CreatedBy,
	}
}

func (m *TenantAggregateModel) fromTenantRoot(t shared.TenantAggregateRoot) {
	m.fromAggregate(t.BaseAggregateRoot)
	m.TenantID = t.TenantID
	m.CreatedBy = t.CreatedBy
}
