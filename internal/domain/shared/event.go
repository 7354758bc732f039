package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact about a ledger aggregate, published after the
// transaction that produced it commits
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
	TenantID() uuid.UUID
}

// AggregateRef identifies the aggregate an event was raised by
type AggregateRef struct {
	Type string    `json:"type"`
	ID   uuid.UUID `json:"id"`
}

// BaseDomainEvent is the envelope embedded by every concrete event
type BaseDomainEvent struct {
	ID        uuid.UUID    `json:"event_id"`
	Type      string       `json:"event_type"`
	At        time.Time    `json:"occurred_at"`
	Aggregate AggregateRef `json:"aggregate"`
	Tenant    uuid.UUID    `json:"tenant_id"`
}

// NewBaseDomainEvent stamps a fresh envelope for an event raised now
func NewBaseDomainEvent(eventType, aggType string, aggID, tenantID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		ID:        uuid.New(),
		Type:      eventType,
		At:        time.Now().UTC(),
		Aggregate: AggregateRef{Type: aggType, ID: aggID},
		Tenant:    tenantID,
	}
}

func (e BaseDomainEvent) EventID() uuid.UUID     { return e.ID }
func (e BaseDomainEvent) EventType() string      { return e.Type }
func (e BaseDomainEvent) OccurredAt() time.Time  { return e.At }
func (e BaseDomainEvent) AggregateID() uuid.UUID { return e.Aggregate.ID }
func (e BaseDomainEvent) AggregateType() string  { return e.Aggregate.Type }
func (e BaseDomainEvent) TenantID() uuid.UUID    { return e.Tenant }

// EventHandler handles domain events
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the types the handler wants; empty means all
	EventTypes() []string
}

// EventPublisher delivers events to subscribed handlers. Handlers must not
// mutate ledger state.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventBus is a publisher that handlers can subscribe to
type EventBus interface {
	EventPublisher
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
