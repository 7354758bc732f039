package balance

import (
	"context"
	"fmt"

	"github.com/erp/reconciler/internal/domain/finance"
	"github.com/erp/reconciler/internal/domain/partner"
	"github.com/erp/reconciler/internal/domain/shared"
	"go.uber.org/zap"
)

// BalanceChangedHandler logs CustomerBalanceRecalculated events.
// Large movements are logged at warn level so they stand out in the nightly run.
type BalanceChangedHandler struct {
	logger    *zap.Logger
	threshold float64
}

// NewBalanceChangedHandler creates a handler that warns when |delta| exceeds threshold
func NewBalanceChangedHandler(logger *zap.Logger, threshold float64) *BalanceChangedHandler {
	if threshold <= 0 {
		threshold = finance.DriftTolerance.InexactFloat64()
	}
	return &BalanceChangedHandler{logger: logger, threshold: threshold}
}

// EventTypes returns the event types this handler is interested in
func (h *BalanceChangedHandler) EventTypes() []string {
	return []string{partner.EventTypeCustomerBalanceRecalculated}
}

// Handle logs the balance movement
func (h *BalanceChangedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	changed, ok := event.(*partner.CustomerBalanceRecalculatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			partner.EventTypeCustomerBalanceRecalculated, event.EventType())
	}

	fields := []zap.Field{
		zap.String("tenant_id", changed.TenantID().String()),
		zap.String("customer_id", changed.CustomerID.String()),
		zap.String("previous_balance", changed.PreviousBalance.String()),
		zap.String("new_balance", changed.NewBalance.String()),
		zap.String("delta", changed.Delta().String()),
	}
	if changed.Delta().Abs().InexactFloat64() > h.threshold {
		h.logger.Warn("customer balance moved", fields...)
		return nil
	}
	h.logger.Debug("customer balance moved", fields...)
	return nil
}

var _ shared.EventHandler = (*BalanceChangedHandler)(nil)
