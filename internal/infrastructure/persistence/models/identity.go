package models

import (
	"time"

	"github.com/erp/reconciler/internal/domain/identity"
	"github.com/google/uuid"
)

// TenantModel is the persistence model for the Tenant aggregate
type TenantModel struct {
	AggregateModel
	Code   string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name   string                `gorm:"type:varchar(200);not null"`
	Status identity.TenantStatus `gorm:"type:varchar(20);not null;default:'active';index"`
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the persistence model to a domain Tenant
func (m *TenantModel) ToDomain() *identity.Tenant {
	return &identity.Tenant{
		BaseAggregateRoot: m.aggregate(),
		Code:   m.Code,
		Name:   m.Name,
		Status: m.Status,
	}
}

// TenantModelFromDomain creates a persistence model from a domain Tenant
func TenantModelFromDomain(t *identity.Tenant) *TenantModel {
	m := &TenantModel{Code: t.Code, Name: t.Name, Status: t.Status}
	m.fromAggregate(t.BaseAggregateRoot)
	return m
}

// TenantSettingModel is one key/value setting of a tenant
type TenantSettingModel struct {
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Key       string    `gorm:"type:varchar(100);primaryKey"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TenantSettingModel) TableName() string {
	return "tenant_settings"
}
