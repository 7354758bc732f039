package shared

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditAction identifies what happened to an audited entity
type AuditAction string

const (
	AuditActionCreate  AuditAction = "CREATE"
	AuditActionApprove AuditAction = "APPROVE"
	AuditActionReject  AuditAction = "REJECT"
	AuditActionDelete  AuditAction = "DELETE"
	AuditActionRepair  AuditAction = "REPAIR"
	AuditActionRefund  AuditAction = "REFUND"
	AuditActionVoid    AuditAction = "VOID"
)

// AuditEntry is an append-only record of a ledger mutation
type AuditEntry struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	EntityType string
	EntityID   uuid.UUID
	Action     AuditAction
	ActorID    *uuid.UUID
	Details    string
	CreatedAt  time.Time
}

// NewAuditEntry builds an entry; details are marshalled to JSON.
// Unmarshalable details are dropped rather than failing the mutation.
func NewAuditEntry(tenantID uuid.UUID, entityType string, entityID uuid.UUID, action AuditAction, actorID uuid.UUID, details any) *AuditEntry {
	entry := &AuditEntry{
		ID:         uuid.New(),
		TenantID:   tenantID,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		CreatedAt:  time.Now(),
	}
	if actorID != uuid.Nil {
		entry.ActorID = &actorID
	}
	if details != nil {
		if b, err := json.Marshal(details); err == nil {
			entry.Details = string(b)
		}
	}
	return entry
}

// AuditLogRepository persists audit entries
type AuditLogRepository interface {
	Append(ctx context.Context, entry *AuditEntry) error
	FindByEntity(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID) ([]AuditEntry, error)
}
