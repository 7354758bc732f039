package uow

import (
	"context"

	"github.com/erp/reconciler/internal/domain/shared"
	"go.uber.org/zap"
)

// EventCollector gathers domain events raised inside a transaction so they
// can be published once the transaction has committed.
type EventCollector struct {
	events []shared.DomainEvent
}

// Collect drains pending events from the aggregates
func (c *EventCollector) Collect(aggregates ...shared.EventSource) {
	for _, agg := range aggregates {
		if agg == nil {
			continue
		}
		c.events = append(c.events, agg.GetDomainEvents()...)
		agg.ClearDomainEvents()
	}
}

// Events returns the collected events
func (c *EventCollector) Events() []shared.DomainEvent {
	return c.events
}

// Reset discards collected events, used when a transaction is retried or rolled back
func (c *EventCollector) Reset() {
	c.events = nil
}

// Publish sends the collected events. Publishing failures are logged and do
// not fail the already committed operation.
func (c *EventCollector) Publish(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger) {
	if publisher == nil || len(c.events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, c.events...); err != nil && logger != nil {
		logger.Warn("failed to publish domain events",
			zap.Int("event_count", len(c.events)),
			zap.Error(err),
		)
	}
	c.events = nil
}
