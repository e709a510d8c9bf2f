package scheduler

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/monartisan/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// TriggerConfig holds configuration for the interval trigger
type TriggerConfig struct {
	// RunOnStart submits every job once when the trigger starts
	RunOnStart bool
	// LockWait bounds how long a tick waits for the cluster lock
	LockWait time.Duration
}

// DefaultTriggerConfig returns default trigger configuration
func DefaultTriggerConfig() TriggerConfig {
	return TriggerConfig{
		RunOnStart: true,
		LockWait:   time.Second,
	}
}

// Trigger submits each registered job to the scheduler on its interval.
// With a Locker, a tick is claimed by a single instance: the lock key is
// bound to the interval slot and left to expire.
type Trigger struct {
	config    TriggerConfig
	scheduler *Scheduler
	locker    shared.Locker
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewTrigger creates a new interval trigger. locker may be nil on a
// single instance deployment.
func NewTrigger(config TriggerConfig, scheduler *Scheduler, locker shared.Locker, logger *zap.Logger) *Trigger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.LockWait <= 0 {
		config.LockWait = DefaultTriggerConfig().LockWait
	}
	return &Trigger{
		config:    config,
		scheduler: scheduler,
		locker:    locker,
		logger:    logger,
	}
}

// Start starts one ticker per job
func (t *Trigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	for _, job := range t.scheduler.Jobs() {
		if job.Interval <= 0 {
			t.logger.Warn("Job has no interval, not scheduled", zap.String("job", job.Name))
			continue
		}
		t.wg.Add(1)
		go t.loop(ctx, job)
		t.logger.Info("Job scheduled",
			zap.String("job", job.Name),
			zap.Duration("interval", job.Interval))
	}
	return nil
}

// Stop stops the tickers
func (t *Trigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Job trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Trigger) loop(ctx context.Context, job Job) {
	defer t.wg.Done()

	if t.config.RunOnStart {
		t.fire(ctx, job, time.Now())
	}

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			t.fire(ctx, job, now)
		}
	}
}

func (t *Trigger) fire(ctx context.Context, job Job, now time.Time) {
	if t.locker != nil {
		slot := now.Truncate(job.Interval).Unix()
		lockCtx, cancel := context.WithTimeout(ctx, t.config.LockWait)
		_, err := t.locker.Acquire(lockCtx, "scheduler:"+job.Name+":"+strconv.FormatInt(slot, 10), job.Interval)
		cancel()
		if errors.Is(err, shared.ErrLockBusy) {
			t.logger.Debug("Job tick claimed by another instance", zap.String("job", job.Name))
			return
		}
		if err != nil {
			t.logger.Warn("Failed to claim job tick", zap.String("job", job.Name), zap.Error(err))
			return
		}
	}

	if err := t.scheduler.Submit(job.Name); err != nil {
		t.logger.Warn("Failed to submit job", zap.String("job", job.Name), zap.Error(err))
	}
}
