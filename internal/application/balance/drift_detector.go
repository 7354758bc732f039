package balance

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/erp/reconciler/internal/application/uow"
	"github.com/erp/reconciler/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DriftDetector compares stored balances with the formula and repairs drift
type DriftDetector struct {
	scope   uow.TransactionScope
	service *Service
	metrics Metrics
	logger  *zap.Logger
	workers int
}

// NewDriftDetector creates a DriftDetector. Repairs go through service so
// they share its single-flight and event publishing.
func NewDriftDetector(scope uow.TransactionScope, service *Service) *DriftDetector {
	return &DriftDetector{
		scope:   scope,
		service: service,
		metrics: service.metrics,
		logger:  service.logger.Named("drift"),
		workers: service.workers,
	}
}

// CheckCustomer reports the drift of one customer without changing anything
func (d *DriftDetector) CheckCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*DriftResult, error) {
	var result *DriftResult
	err := d.scope.Execute(ctx, func(repos uow.Repositories) error {
		customer, err := repos.Customers().FindByID(ctx, tenantID, customerID)
		if err != nil {
			return err
		}
		totals, err := repos.Ledger().LoadTotals(ctx, tenantID, customerID)
		if err != nil {
			return fmt.Errorf("failed to load ledger totals: %w", err)
		}
		result = newDriftResult(customer, totals)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RepairCustomer recalculates the customer if it has drifted.
// The returned result describes the state before the repair.
func (d *DriftDetector) RepairCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (_ *DriftResult, err error) {
	ctx, span := telemetry.StartSpan(ctx, "drift_detector", "repair_customer",
		telemetry.AttrTenantID.String(tenantID.String()),
		telemetry.AttrCustomerID.String(customerID.String()))
	defer telemetry.EndSpan(span, &err)

	result, err := d.CheckCustomer(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	if !result.Drifted {
		return result, nil
	}
	if _, err := d.service.RecalculateCustomerBalance(ctx, tenantID, customerID); err != nil {
		return nil, err
	}
	result.Repaired = true
	d.logger.Warn("repaired drifted customer balance",
		zap.String("tenant_id", tenantID.String()),
		zap.String("customer_id", customerID.String()),
		zap.String("drift", result.Difference.String()),
	)
	d.metrics.RecordRepair(ctx, tenantID, 1, 0)
	return result, nil
}

// ValidateTenant checks every customer of the tenant and reports those that drifted
func (d *DriftDetector) ValidateTenant(ctx context.Context, tenantID uuid.UUID) (_ *DriftReport, err error) {
	ctx, span := telemetry.StartSpan(ctx, "drift_detector", "validate_tenant", telemetry.AttrTenantID.String(tenantID.String()))
	defer telemetry.EndSpan(span, &err)

	ids, err := d.service.customerIDs(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	report := &DriftReport{
		TenantID:         tenantID,
		CheckedAt:        time.Now(),
		CustomersChecked: len(ids),
		Drifted:          make([]DriftResult, 0),
		TotalDrift:       decimal.Zero,
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for _, id := range ids {
		g.Go(func() error {
			result, err := d.CheckCustomer(gctx, tenantID, id)
			if err != nil {
				return fmt.Errorf("customer %s: %w", id, err)
			}
			if result.Drifted {
				mu.Lock()
				report.Drifted = append(report.Drifted, *result)
				report.TotalDrift = report.TotalDrift.Add(result.Difference.Abs())
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(report.Drifted, func(i, j int) bool {
		return report.Drifted[i].CustomerCode < report.Drifted[j].CustomerCode
	})

	d.metrics.RecordDrift(ctx, tenantID, report.CustomersChecked, len(report.Drifted))
	if report.HasDrift() {
		d.logger.Warn("balance drift detected",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("customers_checked", report.CustomersChecked),
			zap.Int("drifted", len(report.Drifted)),
			zap.String("total_drift", report.TotalDrift.String()),
		)
	}
	return report, nil
}

// RepairTenant validates the tenant and recalculates every drifted customer.
// A failed repair is recorded in the report and does not stop the others.
func (d *DriftDetector) RepairTenant(ctx context.Context, tenantID uuid.UUID) (_ *DriftReport, err error) {
	ctx, span := telemetry.StartSpan(ctx, "drift_detector", "repair_tenant", telemetry.AttrTenantID.String(tenantID.String()))
	defer telemetry.EndSpan(span, &err)

	report, err := d.ValidateTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !report.HasDrift() {
		return report, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for i := range report.Drifted {
		result := &report.Drifted[i]
		g.Go(func() error {
			_, err := d.service.RecalculateCustomerBalance(gctx, tenantID, result.CustomerID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failures = append(report.Failures, RepairFailure{CustomerID: result.CustomerID, Error: err.Error()})
				d.logger.Error("failed to repair customer balance",
					zap.String("tenant_id", tenantID.String()),
					zap.String("customer_id", result.CustomerID.String()),
					zap.Error(err),
				)
				return nil
			}
			result.Repaired = true
			report.Repaired++
			return nil
		})
	}
	_ = g.Wait()

	d.metrics.RecordRepair(ctx, tenantID, report.Repaired, len(report.Failures))
	d.logger.Info("tenant balance repair finished",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("drifted", len(report.Drifted)),
		zap.Int("repaired", report.Repaired),
		zap.Int("failed", len(report.Failures)),
	)

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}
