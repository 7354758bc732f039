package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
)

const reconciliationMeterName = "reconciler/balance"

// ReconciliationMetrics records balance recalculation, drift and repair
// figures per tenant. It implements balance.Metrics.
type ReconciliationMetrics struct {
	recalculations   *Counter
	recalcDuration   *Histogram
	customersChecked *Counter
	drifted          *Counter
	lastDrifted      *Gauge
	repaired         *Counter
	repairFailures   *Counter
}

// NewReconciliationMetrics creates the reconciliation instruments on the meter
func NewReconciliationMetrics(meter metric.Meter) (*ReconciliationMetrics, error) {
	m := &ReconciliationMetrics{}
	var err error

	if m.recalculations, err = NewCounter(meter, "balance_recalculations_total",
		"Customer balance recalculations", "{recalculation}"); err != nil {
		return nil, err
	}
	if m.recalcDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "balance_recalculation_duration_seconds",
		Description: "Time spent recalculating one customer balance",
		Unit:        "s",
		Boundaries:  SmallDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.customersChecked, err = NewCounter(meter, "balance_drift_checks_total",
		"Customers checked for balance drift", "{customer}"); err != nil {
		return nil, err
	}
	if m.drifted, err = NewCounter(meter, "balance_drift_detected_total",
		"Customers whose stored balance drifted from the ledger", "{customer}"); err != nil {
		return nil, err
	}
	if m.lastDrifted, err = NewGauge(meter, "balance_drifted_customers",
		"Drifted customers found by the latest tenant check", "{customer}"); err != nil {
		return nil, err
	}
	if m.repaired, err = NewCounter(meter, "balance_repairs_total",
		"Drifted customers repaired", "{customer}"); err != nil {
		return nil, err
	}
	if m.repairFailures, err = NewCounter(meter, "balance_repair_failures_total",
		"Drifted customers whose repair failed", "{customer}"); err != nil {
		return nil, err
	}
	return m, nil
}

// NewReconciliationMetricsFromProvider creates the instruments on the provider's meter
func NewReconciliationMetricsFromProvider(mp *MeterProvider) (*ReconciliationMetrics, error) {
	return NewReconciliationMetrics(mp.Meter(reconciliationMeterName))
}

// RecordRecalculation implements balance.Metrics
func (m *ReconciliationMetrics) RecordRecalculation(ctx context.Context, tenantID uuid.UUID, duration time.Duration, changed bool) {
	outcome := "unchanged"
	if changed {
		outcome = "changed"
	}
	tenant := AttrTenantID.String(tenantID.String())
	m.recalculations.Inc(ctx, tenant, AttrOutcome.String(outcome))
	m.recalcDuration.RecordDuration(ctx, duration, tenant)
}

// RecordDrift implements balance.Metrics
func (m *ReconciliationMetrics) RecordDrift(ctx context.Context, tenantID uuid.UUID, checked, drifted int) {
	tenant := AttrTenantID.String(tenantID.String())
	m.customersChecked.AddN(ctx, int64(checked), tenant)
	if drifted > 0 {
		m.drifted.AddN(ctx, int64(drifted), tenant)
	}
	m.lastDrifted.Set(ctx, int64(drifted), tenant)
}

// RecordRepair implements balance.Metrics
func (m *ReconciliationMetrics) RecordRepair(ctx context.Context, tenantID uuid.UUID, repaired, failed int) {
	tenant := AttrTenantID.String(tenantID.String())
	if repaired > 0 {
		m.repaired.AddN(ctx, int64(repaired), tenant)
	}
	if failed > 0 {
		m.repairFailures.AddN(ctx, int64(failed), tenant)
	}
}
