package balance

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Metrics records reconciliation measurements
type Metrics interface {
	RecordRecalculation(ctx context.Context, tenantID uuid.UUID, duration time.Duration, changed bool)
	RecordDrift(ctx context.Context, tenantID uuid.UUID, checked, drifted int)
	RecordRepair(ctx context.Context, tenantID uuid.UUID, repaired, failed int)
}

type noopMetrics struct{}

func (noopMetrics) RecordRecalculation(context.Context, uuid.UUID, time.Duration, bool) {}
func (noopMetrics) RecordDrift(context.Context, uuid.UUID, int, int)                    {}
func (noopMetrics) RecordRepair(context.Context, uuid.UUID, int, int)                   {}
