package event

import (
	"context"

	"github.com/erp/reconciler/internal/domain/shared"
	"go.uber.org/zap"
)

// JournalHandler writes every published domain event to the log
type JournalHandler struct {
	logger *zap.Logger
}

// NewJournalHandler creates a handler that logs all events
func NewJournalHandler(logger *zap.Logger) *JournalHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JournalHandler{logger: logger.Named("events")}
}

// Handle implements shared.EventHandler
func (h *JournalHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.logger.Info("domain event",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("tenant_id", event.TenantID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	)
	return nil
}

// EventTypes returns nil so the handler receives every event
func (h *JournalHandler) EventTypes() []string {
	return nil
}
