package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/reconciler/internal/application/balance"
	"github.com/erp/reconciler/internal/infrastructure/lock"
	"github.com/erp/reconciler/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// TenantReconciler is the part of the drift detector the nightly job drives
type TenantReconciler interface {
	ValidateTenant(ctx context.Context, tenantID uuid.UUID) (*balance.DriftReport, error)
	RepairTenant(ctx context.Context, tenantID uuid.UUID) (*balance.DriftReport, error)
}

// ReportArchiver stores a copy of a tenant's drift report
type ReportArchiver interface {
	ArchiveDriftReport(ctx context.Context, report *balance.DriftReport) (string, error)
}

// ExecutorOption configures a BalanceReconciliationExecutor
type ExecutorOption func(*BalanceReconciliationExecutor)

// WithReportArchiver archives every report that found drift
func WithReportArchiver(archiver ReportArchiver) ExecutorOption {
	return func(e *BalanceReconciliationExecutor) {
		e.archiver = archiver
	}
}

// BalanceReconciliationExecutor runs a tenant's drift check or repair while
// holding the tenant's sweep lock
type BalanceReconciliationExecutor struct {
	reconciler TenantReconciler
	locker     lock.Locker
	lockTTL    time.Duration
	logger     *zap.Logger
	archiver   ReportArchiver
}

// NewBalanceReconciliationExecutor creates a new executor
func NewBalanceReconciliationExecutor(reconciler TenantReconciler, locker lock.Locker, lockTTL time.Duration, logger *zap.Logger, opts ...ExecutorOption) *BalanceReconciliationExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if lockTTL <= 0 {
		lockTTL = 30 * time.Minute
	}
	e := &BalanceReconciliationExecutor{
		reconciler: reconciler,
		locker:     locker,
		lockTTL:    lockTTL,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute implements JobExecutor
func (e *BalanceReconciliationExecutor) Execute(ctx context.Context, job *Job) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "balance_reconciliation", "execute",
		telemetry.AttrTenantID.String(job.TenantID.String()),
		telemetry.AttrJobID.String(job.ID.String()),
		telemetry.AttrJobType.String(string(job.Type)),
	)
	defer telemetry.EndSpan(span, &err)

	held, err := e.locker.Obtain(ctx, job.TenantID.String(), e.lockTTL)
	if errors.Is(err, lock.ErrNotObtained) {
		e.logger.Info("Tenant reconciliation already running elsewhere, skipping",
			zap.String("job_id", job.ID.String()),
			zap.String("tenant_id", job.TenantID.String()),
		)
		job.Skip("tenant lock held")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to obtain tenant lock: %w", err)
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := held.Release(releaseCtx); err != nil {
			e.logger.Warn("Failed to release tenant lock",
				zap.String("tenant_id", job.TenantID.String()),
				zap.Error(err),
			)
		}
	}()

	var report *balance.DriftReport
	switch job.Type {
	case JobTypeBalanceRepair:
		report, err = e.reconciler.RepairTenant(ctx, job.TenantID)
	case JobTypeBalanceValidate:
		report, err = e.reconciler.ValidateTenant(ctx, job.TenantID)
	default:
		return ErrInvalidJobType
	}
	if err != nil {
		return err
	}

	e.logger.Info("Tenant reconciliation finished",
		zap.String("job_id", job.ID.String()),
		zap.String("tenant_id", job.TenantID.String()),
		zap.String("job_type", string(job.Type)),
		zap.Int("customers_checked", report.CustomersChecked),
		zap.Int("drifted", len(report.Drifted)),
		zap.Int("repaired", report.Repaired),
		zap.String("total_drift", report.TotalDrift.String()),
	)

	span.AddEvent("reconciliation_report", trace.WithAttributes(
		attribute.Int("customers_checked", report.CustomersChecked),
		attribute.Int("drifted", len(report.Drifted)),
		attribute.Int("repaired", report.Repaired),
	))
	e.archive(ctx, job, report)

	if len(report.Failures) > 0 {
		return fmt.Errorf("%w: %d of %d drifted customers not repaired",
			ErrReconciliationIncomplete, len(report.Failures), len(report.Drifted))
	}
	return nil
}

// archive failures are logged only; the repair itself has already committed
func (e *BalanceReconciliationExecutor) archive(ctx context.Context, job *Job, report *balance.DriftReport) {
	if e.archiver == nil || !report.HasDrift() {
		return
	}
	key, err := e.archiver.ArchiveDriftReport(ctx, report)
	if err != nil {
		e.logger.Warn("Failed to archive drift report",
			zap.String("job_id", job.ID.String()),
			zap.String("tenant_id", job.TenantID.String()),
			zap.Error(err),
		)
		return
	}
	e.logger.Info("Drift report archived",
		zap.String("job_id", job.ID.String()),
		zap.String("key", key),
	)
}
