package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries identity and timestamps. Ledger lines that are never
// versioned on their own (sale items, expense lines) embed it directly.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity stamps a fresh ID and creation time
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// Touch refreshes UpdatedAt
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}

// EventSource is an aggregate that buffers domain events until commit
type EventSource interface {
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot adds an optimistic-lock version and pending events
type BaseAggregateRoot struct {
	BaseEntity
	Version int

	pending []DomainEvent
}

// NewBaseAggregateRoot starts at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

// IncrementVersion bumps the version after a state change
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// AddDomainEvent queues an event for publication after commit
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.pending = append(a.pending, event)
}

// GetDomainEvents returns queued events
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.pending
}

// ClearDomainEvents drops queued events
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.pending = nil
}

// TenantAggregateRoot is the root of every tenant-owned ledger record
type TenantAggregateRoot struct {
	BaseAggregateRoot
	TenantID  uuid.UUID
	CreatedBy *uuid.UUID
}

// NewTenantAggregateRoot creates a root owned by tenantID
func NewTenantAggregateRoot(tenantID uuid.UUID) TenantAggregateRoot {
	return TenantAggregateRoot{BaseAggregateRoot: NewBaseAggregateRoot(), TenantID: tenantID}
}

// SetCreatedBy records the acting user; uuid.Nil leaves it unset
func (t *TenantAggregateRoot) SetCreatedBy(userID uuid.UUID) {
	if userID == uuid.Nil {
		return
	}
	t.CreatedBy = &userID
}
