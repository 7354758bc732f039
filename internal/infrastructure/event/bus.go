package event

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/erp/reconciler/internal/domain/shared"
	"go.uber.org/zap"
)

// InMemoryEventBus dispatches domain events to subscribed handlers in the
// publishing goroutine. Events are published after the originating
// transaction commits, so a failing handler never affects ledger state.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	running  atomic.Bool

	published atomic.Int64
	failed    atomic.Int64
}

// NewInMemoryEventBus creates a new in-memory event bus. The bus accepts
// events immediately; Stop makes it drop further events.
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
	}
	b.running.Store(true)
	return b
}

// Publish delivers each event to its handlers. Every handler runs even when
// an earlier one fails; the failures are joined into the returned error.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if !b.running.Load() {
		b.logger.Warn("event bus stopped, dropping events", zap.Int("count", len(events)))
		return nil
	}

	var errs []error
	for _, event := range events {
		if event == nil {
			continue
		}
		b.published.Add(1)
		errs = append(errs, b.deliver(ctx, event)...)
	}
	return errors.Join(errs...)
}

// Subscribe registers a handler for specific event types. Without explicit
// types the handler's own EventTypes are used; an empty list subscribes to all.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed",
		zap.Strings("event_types", eventTypes),
	)
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
	b.logger.Debug("handler unsubscribed")
}

// Start starts the event bus
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.running.Store(true)
	b.logger.Info("event bus started")
	return nil
}

// Stop stops the event bus
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.running.Store(false)
	b.logger.Info("event bus stopped",
		zap.Int64("published", b.published.Load()),
		zap.Int64("handler_failures", b.failed.Load()),
	)
	return nil
}

// Stats returns the number of events published and handler failures seen
func (b *InMemoryEventBus) Stats() (published, failed int64) {
	return b.published.Load(), b.failed.Load()
}

// deliver runs every handler subscribed to the event's type and returns
// their failures
func (b *InMemoryEventBus) deliver(ctx context.Context, event shared.DomainEvent) []error {
	handlers := b.registry.For(event.EventType())
	if len(handlers) == 0 {
		return nil
	}

	log := b.logger.With(
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("tenant_id", event.TenantID().String()),
	)
	var errs []error
	for _, handler := range handlers {
		if err := safeHandle(ctx, handler, event); err != nil {
			b.failed.Add(1)
			log.Error("handler failed to process event", zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", event.EventType(), err))
		}
	}
	return errs
}

// safeHandle turns a handler panic into an error
func safeHandle(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler.Handle(ctx, event)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
