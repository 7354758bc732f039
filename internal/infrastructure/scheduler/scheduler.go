package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobStatus is where a job is in its lifecycle
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
	JobStatusSkipped JobStatus = "SKIPPED"
)

// JobType selects what a job does with its tenant
type JobType string

const (
	// JobTypeBalanceRepair validates every customer of a tenant and recalculates the drifted ones
	JobTypeBalanceRepair JobType = "BALANCE_REPAIR"
	// JobTypeBalanceValidate only reports drift
	JobTypeBalanceValidate JobType = "BALANCE_VALIDATE"
)

// IsValid reports whether the job type is known
func (t JobType) IsValid() bool {
	return t == JobTypeBalanceRepair || t == JobTypeBalanceValidate
}

// Job is one tenant's reconciliation run. Retries reuse the same Job.
type Job struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	Type        JobType
	Status      JobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time
}

// NewJob creates a pending job
func NewJob(tenantID uuid.UUID, jobType JobType, maxRetries int) *Job {
	return &Job{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Type:       jobType,
		Status:     JobStatusPending,
		MaxRetries: maxRetries,
	}
}

// Start marks the job running and clears the previous attempt's error
func (j *Job) Start() {
	now := time.Now()
	j.Status, j.StartedAt, j.Error = JobStatusRunning, &now, ""
}

// Complete marks the job successful
func (j *Job) Complete() { j.settle(JobStatusSuccess, "") }

// Skip ends the job without running it, e.g. when another instance holds the tenant lock
func (j *Job) Skip(reason string) { j.settle(JobStatusSkipped, reason) }

// Fail marks the job failed
func (j *Job) Fail(err string) { j.settle(JobStatusFailed, err) }

func (j *Job) settle(status JobStatus, msg string) {
	now := time.Now()
	j.Status, j.CompletedAt, j.Error = status, &now, msg
}

// ShouldRetry reports whether a failed job has retries left
func (j *Job) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// ScheduleRetry puts the job back to pending, due after delay
func (j *Job) ScheduleRetry(delay time.Duration) {
	next := time.Now().Add(delay)
	j.RetryCount++
	j.Status, j.NextRetryAt, j.Error = JobStatusPending, &next, ""
}

func (j *Job) logFields(extra ...zap.Field) []zap.Field {
	return append([]zap.Field{
		zap.String("job_id", j.ID.String()),
		zap.String("tenant_id", j.TenantID.String()),
		zap.String("job_type", string(j.Type)),
	}, extra...)
}

// JobExecutor runs a job. It may call job.Skip to end the job without error.
type JobExecutor interface {
	Execute(ctx context.Context, job *Job) error
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	Enabled           bool
	MaxConcurrentJobs int
	JobTimeout        time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
	QueueSize         int
}

// DefaultSchedulerConfig returns default scheduler configuration
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:           true,
		MaxConcurrentJobs: 3,
		JobTimeout:        30 * time.Minute,
		RetryAttempts:     3,
		RetryDelay:        5 * time.Minute,
		QueueSize:         100,
	}
}

// Scheduler runs reconciliation jobs on a fixed pool of workers fed by a
// bounded queue. Failed jobs are re-queued after RetryDelay.
type Scheduler struct {
	config   SchedulerConfig
	executor JobExecutor
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
	queue   chan *Job
	retries map[uuid.UUID]*time.Timer
	onDone  func(*Job)

	cancel  context.CancelFunc
	workers sync.WaitGroup
}

// NewScheduler creates a stopped scheduler
func NewScheduler(config SchedulerConfig, executor JobExecutor, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	config.MaxConcurrentJobs = max(config.MaxConcurrentJobs, 1)
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultSchedulerConfig().QueueSize
	}
	return &Scheduler{
		config:   config,
		executor: executor,
		logger:   logger.Named("scheduler"),
		retries:  make(map[uuid.UUID]*time.Timer),
	}
}

// OnJobDone registers fn to be called once a job is final: succeeded,
// skipped, or failed with no retries left.
func (s *Scheduler) OnJobDone(fn func(*Job)) {
	s.mu.Lock()
	s.onDone = fn
	s.mu.Unlock()
}

// Start launches the workers. Starting a running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.queue = make(chan *Job, s.config.QueueSize)
	s.running = true
	for id := range s.config.MaxConcurrentJobs {
		s.workers.Add(1)
		go s.work(ctx, id, s.queue)
	}

	s.logger.Info("Reconciliation scheduler started",
		zap.Int("workers", s.config.MaxConcurrentJobs),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop drops pending retries, cancels running jobs and waits for the workers
// until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	for id, timer := range s.retries {
		timer.Stop()
		delete(s.retries, id)
	}
	close(s.queue)
	s.cancel()
	s.mu.Unlock()

	stopped := make(chan struct{})
	go func() {
		s.workers.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
		s.logger.Info("Reconciliation scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Reconciliation scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the scheduler accepts jobs
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// SubmitJob queues job without blocking
func (s *Scheduler) SubmitJob(job *Job) error {
	if !job.Type.IsValid() {
		return ErrInvalidJobType
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return ErrSchedulerNotRunning
	}
	select {
	case s.queue <- job:
		s.logger.Debug("Job submitted", job.logFields()...)
		return nil
	default:
		return ErrJobQueueFull
	}
}

// ScheduleTenantRepair queues a balance repair of the tenant
func (s *Scheduler) ScheduleTenantRepair(tenantID uuid.UUID) (*Job, error) {
	return s.schedule(tenantID, JobTypeBalanceRepair)
}

// ScheduleTenantValidation queues a read-only drift check of the tenant
func (s *Scheduler) ScheduleTenantValidation(tenantID uuid.UUID) (*Job, error) {
	return s.schedule(tenantID, JobTypeBalanceValidate)
}

func (s *Scheduler) schedule(tenantID uuid.UUID, jobType JobType) (*Job, error) {
	job := NewJob(tenantID, jobType, s.config.RetryAttempts)
	if err := s.SubmitJob(job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *Scheduler) work(ctx context.Context, id int, queue <-chan *Job) {
	defer s.workers.Done()
	log := s.logger.With(zap.Int("worker_id", id))
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-queue:
			if !ok {
				return
			}
			s.run(ctx, job, log)
		}
	}
}

func (s *Scheduler) run(ctx context.Context, job *Job, log *zap.Logger) {
	job.Start()
	log.Info("Processing job", job.logFields()...)

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	err := s.executor.Execute(jobCtx, job)
	cancel()

	if err == nil {
		if job.Status == JobStatusRunning {
			job.Complete()
		}
		log.Info("Job finished", job.logFields(zap.String("status", string(job.Status)))...)
		s.notifyDone(job)
		return
	}

	job.Fail(err.Error())
	if !job.ShouldRetry() {
		log.Error("Job failed", job.logFields(zap.Error(err))...)
		s.notifyDone(job)
		return
	}
	job.ScheduleRetry(s.config.RetryDelay)
	log.Warn("Job failed, retrying", job.logFields(
		zap.Error(err),
		zap.Int("retry_count", job.RetryCount),
		zap.Int("max_retries", job.MaxRetries),
	)...)
	s.requeueAfterDelay(job)
}

func (s *Scheduler) requeueAfterDelay(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.retries[job.ID] = time.AfterFunc(s.config.RetryDelay, func() {
		s.mu.Lock()
		delete(s.retries, job.ID)
		s.mu.Unlock()
		if err := s.SubmitJob(job); err != nil {
			s.logger.Warn("Failed to re-queue job for retry", job.logFields(zap.Error(err))...)
		}
	})
}

func (s *Scheduler) notifyDone(job *Job) {
	s.mu.Lock()
	fn := s.onDone
	s.mu.Unlock()
	if fn != nil {
		fn(job)
	}
}
