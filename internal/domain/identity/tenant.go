package identity

import (
	"context"
	"strings"
	"time"

	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/google/uuid"
)

// TenantStatus represents the status of a tenant
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusInactive  TenantStatus = "inactive"
	TenantStatusSuspended TenantStatus = "suspended"
)

// Tenant is an isolated organization. Only active tenants take part in the nightly sweep.
type Tenant struct {
	shared.BaseAggregateRoot
	Code   string
	Name   string
	Status TenantStatus
}

// NewTenant creates an active tenant
func NewTenant(code, name string) (*Tenant, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Tenant code cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Tenant name cannot be empty")
	}
	return &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Status:            TenantStatusActive,
	}, nil
}

// Deactivate deactivates the tenant
func (t *Tenant) Deactivate() error {
	if t.Status == TenantStatusInactive {
		return shared.NewDomainError(shared.CodeInvalidState, "Tenant is already inactive")
	}
	t.Status = TenantStatusInactive
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// IsActive returns true if the tenant is active
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

// TenantRepository defines the interface for tenant persistence
type TenantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	// FindActiveIDs returns the IDs of all active tenants
	FindActiveIDs(ctx context.Context) ([]uuid.UUID, error)
	Save(ctx context.Context, tenant *Tenant) error
}

// TenantSettingRepository reads and writes per-tenant key/value settings
type TenantSettingRepository interface {
	// Get returns the value and whether the key is set
	Get(ctx context.Context, tenantID uuid.UUID, key string) (string, bool, error)
	Set(ctx context.Context, tenantID uuid.UUID, key, value string) error
}
