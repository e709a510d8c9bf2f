// Package scheduler runs the periodic maintenance jobs: overdue invoices,
// quote expiry, intervention reminders and notification retries.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// JobStatus represents the status of a job run
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Job names
const (
	JobMarkOverdueInvoices = "mark_overdue_invoices"
	JobExpireQuotes        = "expire_quotes"
	JobSendReminders       = "send_intervention_reminders"
	JobRetryNotifications  = "retry_failed_notifications"
)

// JobFunc performs one pass of a job and reports how many records it touched
type JobFunc func(ctx context.Context) (int, error)

// Job is a named periodic task
type Job struct {
	Name     string
	Interval time.Duration
	Run      JobFunc
}

// Run is one execution of a job
type Run struct {
	ID          uuid.UUID
	Job         string
	Status      JobStatus
	Processed   int
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time
}

// NewRun creates a pending run of the named job
func NewRun(job string, maxRetries int) *Run {
	return &Run{
		ID:         uuid.New(),
		Job:        job,
		Status:     JobStatusPending,
		MaxRetries: maxRetries,
	}
}

// Start marks the run as running
func (r *Run) Start() {
	now := time.Now()
	r.Status = JobStatusRunning
	r.StartedAt = &now
	r.Error = ""
}

// Complete marks the run as successful
func (r *Run) Complete(processed int) {
	now := time.Now()
	r.Status = JobStatusSuccess
	r.Processed = processed
	r.CompletedAt = &now
}

// Fail marks the run as failed
func (r *Run) Fail(err string) {
	now := time.Now()
	r.Status = JobStatusFailed
	r.CompletedAt = &now
	r.Error = err
}

// ShouldRetry returns true if the run should be retried
func (r *Run) ShouldRetry() bool {
	return r.Status == JobStatusFailed && r.RetryCount < r.MaxRetries
}

// ScheduleRetry schedules the run for retry
func (r *Run) ScheduleRetry(delay time.Duration) {
	r.RetryCount++
	r.Status = JobStatusPending
	next := time.Now().Add(delay)
	r.NextRetryAt = &next
	r.Error = ""
}

// Duration is the wall time of a finished run
func (r *Run) Duration() time.Duration {
	if r.StartedAt == nil || r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(*r.StartedAt)
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	MaxConcurrentJobs int
	JobTimeout        time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
	QueueSize         int
}

// DefaultSchedulerConfig returns default scheduler configuration
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		MaxConcurrentJobs: 2,
		JobTimeout:        5 * time.Minute,
		RetryAttempts:     2,
		RetryDelay:        time.Minute,
		QueueSize:         32,
	}
}

// Validate checks the configuration
func (c SchedulerConfig) Validate() error {
	if c.MaxConcurrentJobs < 1 || c.JobTimeout <= 0 || c.RetryAttempts < 0 {
		return ErrInvalidConfig
	}
	return nil
}

// Scheduler executes job runs on a bounded worker pool
type Scheduler struct {
	config   SchedulerConfig
	logger   *zap.Logger
	duration *telemetry.Histogram

	jobs      map[string]Job
	queue     chan *Run
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	lastRuns  map[string]Run
}

// NewScheduler creates a new scheduler instance
func NewScheduler(config SchedulerConfig, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultSchedulerConfig().QueueSize
	}
	return &Scheduler{
		config:   config,
		logger:   logger,
		jobs:     make(map[string]Job),
		queue:    make(chan *Run, config.QueueSize),
		lastRuns: make(map[string]Run),
	}
}

// SetDurationHistogram records run durations when set
func (s *Scheduler) SetDurationHistogram(h *telemetry.Histogram) {
	s.duration = h
}

// Register adds a job. Registering a name twice replaces the job.
func (s *Scheduler) Register(job Job) error {
	if job.Name == "" || job.Run == nil {
		return fmt.Errorf("%w: job needs a name and a func", ErrInvalidConfig)
	}
	s.mu.Lock()
	s.jobs[job.Name] = job
	s.mu.Unlock()
	return nil
}

// Jobs returns the registered jobs sorted by name
func (s *Scheduler) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	jobs := make([]Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].Name < jobs[k].Name })
	return jobs
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.config.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.MaxConcurrentJobs; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.logger.Info("Job scheduler started",
		zap.Int("workers", s.config.MaxConcurrentJobs),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Job scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Job scheduler stop timed out")
		return ctx.Err()
	}
}

// Submit queues a run of the named job
func (s *Scheduler) Submit(name string) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	_, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return ErrJobNotFound
	}

	run := NewRun(name, s.config.RetryAttempts)
	select {
	case s.queue <- run:
		s.logger.Debug("Job submitted",
			zap.String("run_id", run.ID.String()),
			zap.String("job", name))
		return nil
	default:
		return ErrJobQueueFull
	}
}

// LastRun returns the most recent finished run of a job
func (s *Scheduler) LastRun(name string) (Run, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.lastRuns[name]
	return r, ok
}

func (s *Scheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case run := <-s.queue:
			s.process(ctx, run, workerID)
		}
	}
}

func (s *Scheduler) process(ctx context.Context, run *Run, workerID int) {
	if run.NextRetryAt != nil {
		wait := time.Until(*run.NextRetryAt)
		if wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return
			}
		}
	}

	s.mu.Lock()
	job, ok := s.jobs[run.Job]
	s.mu.Unlock()
	if !ok {
		return
	}

	run.Start()
	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	jobCtx, span := telemetry.StartSpan(jobCtx, "scheduler."+run.Job,
		attribute.String("job.name", run.Job),
		attribute.String("job.run_id", run.ID.String()),
		attribute.Int("job.retry", run.RetryCount),
	)
	processed, err := job.Run(jobCtx)
	telemetry.EndSpan(span, err)
	cancel()

	if err != nil {
		run.Fail(err.Error())
		s.record(ctx, run)
		s.logger.Error("Job failed",
			zap.Int("worker_id", workerID),
			zap.String("run_id", run.ID.String()),
			zap.String("job", run.Job),
			zap.Int("retry_count", run.RetryCount),
			zap.Error(err),
		)
		if run.ShouldRetry() && ctx.Err() == nil {
			run.ScheduleRetry(s.config.RetryDelay)
			select {
			case s.queue <- run:
			default:
				s.logger.Warn("Failed to re-queue job for retry", zap.String("run_id", run.ID.String()))
			}
		}
		return
	}

	run.Complete(processed)
	s.record(ctx, run)
	s.logger.Info("Job completed",
		zap.Int("worker_id", workerID),
		zap.String("run_id", run.ID.String()),
		zap.String("job", run.Job),
		zap.Int("processed", processed),
		zap.Duration("duration", run.Duration()),
	)
}

func (s *Scheduler) record(ctx context.Context, run *Run) {
	s.mu.Lock()
	s.lastRuns[run.Job] = *run
	s.mu.Unlock()
	if s.duration != nil {
		s.duration.RecordDuration(ctx, run.Duration(),
			attribute.String("job", run.Job),
			attribute.String("status", string(run.Status)))
	}
}
