package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/monartisan/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() SchedulerConfig {
	return SchedulerConfig{
		MaxConcurrentJobs: 2,
		JobTimeout:        time.Second,
		RetryAttempts:     1,
		RetryDelay:        10 * time.Millisecond,
		QueueSize:         8,
	}
}

func startScheduler(t *testing.T, jobs ...Job) *Scheduler {
	t.Helper()
	s := NewScheduler(testConfig(), nil)
	for _, j := range jobs {
		require.NoError(t, s.Register(j))
	}
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { _ = s.Stop(context.Background()) })
	return s
}

func TestRunLifecycle(t *testing.T) {
	r := NewRun(JobExpireQuotes, 1)
	assert.Equal(t, JobStatusPending, r.Status)

	r.Start()
	assert.Equal(t, JobStatusRunning, r.Status)
	require.NotNil(t, r.StartedAt)

	r.Fail("db down")
	assert.True(t, r.ShouldRetry())
	r.ScheduleRetry(time.Minute)
	assert.Equal(t, 1, r.RetryCount)
	assert.Equal(t, JobStatusPending, r.Status)
	assert.Empty(t, r.Error)

	r.Start()
	r.Fail("db down again")
	assert.False(t, r.ShouldRetry())

	r.Start()
	r.Complete(4)
	assert.Equal(t, JobStatusSuccess, r.Status)
	assert.Equal(t, 4, r.Processed)
	assert.GreaterOrEqual(t, r.Duration(), time.Duration(0))
}

func TestSchedulerConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultSchedulerConfig().Validate())

	cfg := DefaultSchedulerConfig()
	cfg.MaxConcurrentJobs = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	s := NewScheduler(cfg, nil)
	assert.ErrorIs(t, s.Start(context.Background()), ErrInvalidConfig)
}

func TestSchedulerSubmit(t *testing.T) {
	t.Run("not running", func(t *testing.T) {
		s := NewScheduler(testConfig(), nil)
		require.NoError(t, s.Register(Job{Name: JobExpireQuotes, Run: func(context.Context) (int, error) { return 0, nil }}))
		assert.ErrorIs(t, s.Submit(JobExpireQuotes), ErrSchedulerNotRunning)
	})

	t.Run("unknown job", func(t *testing.T) {
		s := startScheduler(t)
		assert.ErrorIs(t, s.Submit("nope"), ErrJobNotFound)
	})

	t.Run("invalid job", func(t *testing.T) {
		s := NewScheduler(testConfig(), nil)
		assert.ErrorIs(t, s.Register(Job{Name: "empty"}), ErrInvalidConfig)
	})
}

func TestSchedulerRunsJob(t *testing.T) {
	var calls atomic.Int32
	s := startScheduler(t, Job{
		Name: JobMarkOverdueInvoices,
		Run: func(ctx context.Context) (int, error) {
			calls.Add(1)
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			return 3, nil
		},
	})

	require.NoError(t, s.Submit(JobMarkOverdueInvoices))

	assert.Eventually(t, func() bool {
		run, ok := s.LastRun(JobMarkOverdueInvoices)
		return ok && run.Status == JobStatusSuccess
	}, time.Second, 5*time.Millisecond)

	run, _ := s.LastRun(JobMarkOverdueInvoices)
	assert.Equal(t, 3, run.Processed)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSchedulerRetriesFailedRun(t *testing.T) {
	var calls atomic.Int32
	s := startScheduler(t, Job{
		Name: JobRetryNotifications,
		Run: func(context.Context) (int, error) {
			if calls.Add(1) == 1 {
				return 0, errors.New("smtp timeout")
			}
			return 1, nil
		},
	})

	require.NoError(t, s.Submit(JobRetryNotifications))

	assert.Eventually(t, func() bool {
		run, ok := s.LastRun(JobRetryNotifications)
		return ok && run.Status == JobStatusSuccess
	}, time.Second, 5*time.Millisecond)

	run, _ := s.LastRun(JobRetryNotifications)
	assert.Equal(t, 1, run.RetryCount)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSchedulerGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	s := startScheduler(t, Job{
		Name: JobSendReminders,
		Run: func(context.Context) (int, error) {
			calls.Add(1)
			return 0, errors.New("sms provider down")
		},
	})

	require.NoError(t, s.Submit(JobSendReminders))

	assert.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(2), calls.Load())

	run, ok := s.LastRun(JobSendReminders)
	require.True(t, ok)
	assert.Equal(t, JobStatusFailed, run.Status)
	assert.Equal(t, "sms provider down", run.Error)
}

func TestTriggerClaimsTickOnce(t *testing.T) {
	var calls atomic.Int32
	job := Job{
		Name:     JobExpireQuotes,
		Interval: time.Hour,
		Run: func(context.Context) (int, error) {
			calls.Add(1)
			return 0, nil
		},
	}
	locker := cache.NewLocalLocker()
	cfg := TriggerConfig{RunOnStart: true, LockWait: 20 * time.Millisecond}

	a := NewTrigger(cfg, startScheduler(t, job), locker, nil)
	b := NewTrigger(cfg, startScheduler(t, job), locker, nil)
	require.NoError(t, a.Start(context.Background()))
	require.NoError(t, b.Start(context.Background()))
	t.Cleanup(func() {
		_ = a.Stop(context.Background())
		_ = b.Stop(context.Background())
	})

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestTriggerWithoutLocker(t *testing.T) {
	var calls atomic.Int32
	s := startScheduler(t, Job{
		Name:     JobSendReminders,
		Interval: 20 * time.Millisecond,
		Run: func(context.Context) (int, error) {
			calls.Add(1)
			return 0, nil
		},
	})
	tr := NewTrigger(TriggerConfig{}, s, nil, nil)
	require.NoError(t, tr.Start(context.Background()))

	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, tr.Stop(context.Background()))
}
