package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TenantProvider lists the tenants the nightly sweep covers
type TenantProvider interface {
	FindActiveIDs(ctx context.Context) ([]uuid.UUID, error)
}

// CronTriggerConfig sets the local wall-clock time of the daily sweep
type CronTriggerConfig struct {
	RunHour   int // 0-23
	RunMinute int // 0-59
}

// DefaultCronTriggerConfig runs the sweep at 02:00
func DefaultCronTriggerConfig() CronTriggerConfig {
	return CronTriggerConfig{RunHour: 2}
}

// CronTrigger submits one balance repair job per active tenant once a day
type CronTrigger struct {
	config         CronTriggerConfig
	scheduler      *Scheduler
	tenantProvider TenantProvider
	logger         *zap.Logger
	now            func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewCronTrigger creates a stopped trigger
func NewCronTrigger(config CronTriggerConfig, scheduler *Scheduler, tenantProvider TenantProvider, logger *zap.Logger) *CronTrigger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CronTrigger{
		config:         config,
		scheduler:      scheduler,
		tenantProvider: tenantProvider,
		logger:         logger,
		now:            time.Now,
	}
}

// Start arms the daily timer. Starting a running trigger is a no-op.
func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return nil
	}

	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	go c.loop(ctx, c.done)

	c.logger.Info("Reconciliation cron trigger started",
		zap.Time("next_run", c.nextRun(c.now())),
	)
	return nil
}

// Stop disarms the timer and waits for an in-flight trigger to finish
func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()
	if cancel == nil {
		return nil
	}

	cancel()
	select {
	case <-done:
		c.logger.Info("Reconciliation cron trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *CronTrigger) loop(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	for {
		wait := c.nextRun(c.now()).Sub(c.now())
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		c.logger.Info("Triggering nightly balance reconciliation")
		if _, err := c.TriggerNow(ctx); err != nil {
			c.logger.Error("Nightly balance reconciliation not scheduled", zap.Error(err))
		}
	}
}

// nextRun is the first configured wall-clock time strictly after now
func (c *CronTrigger) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), c.config.RunHour, c.config.RunMinute, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, c.config.RunHour, c.config.RunMinute, 0, 0, now.Location())
	}
	return next
}

// TriggerNow submits a repair job for every active tenant and returns the
// submitted jobs. A tenant whose job cannot be queued is logged and skipped.
func (c *CronTrigger) TriggerNow(ctx context.Context) ([]*Job, error) {
	tenantIDs, err := c.tenantProvider.FindActiveIDs(ctx)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Scheduling balance repair for tenants", zap.Int("tenant_count", len(tenantIDs)))

	jobs := make([]*Job, 0, len(tenantIDs))
	for _, tenantID := range tenantIDs {
		job, err := c.scheduler.ScheduleTenantRepair(tenantID)
		if err != nil {
			c.logger.Error("Failed to schedule balance repair for tenant",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
