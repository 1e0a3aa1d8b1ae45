// Package scheduler provides unified scheduler management using gocron v2.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/guardino-io/guardino/internal/shared/biztime"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

// TrafficSyncer reconciles usage counters and enforces limits and expiry.
type TrafficSyncer interface {
	Execute(ctx context.Context) error
}

// FeeDeductor debits daily fees.
type FeeDeductor interface {
	Execute(ctx context.Context) error
}

// CleanupRetrier retries pending remote-account deletes.
type CleanupRetrier interface {
	Execute(ctx context.Context) error
}

// JobFunc adapts a function to the job interfaces above.
type JobFunc func(ctx context.Context) error

func (f JobFunc) Execute(ctx context.Context) error { return f(ctx) }

// SchedulerManager owns the wall-clock scheduling for the reconciliation
// jobs. The usecases never schedule themselves; they are handed in here and
// driven by gocron with singleton-mode jobs so a slow run is never
// overlapped by the next tick.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	started   bool
	startedMu sync.RWMutex
}

// NewSchedulerManager creates a new SchedulerManager instance. Cron
// expressions evaluate in the business timezone.
func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(biztime.Location()),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// RegisterTrafficSyncJob schedules the traffic reconciliation sweep.
func (m *SchedulerManager) RegisterTrafficSyncJob(syncer TrafficSyncer, interval time.Duration) error {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			if err := syncer.Execute(ctx); err != nil {
				m.logger.Errorw("traffic sync run failed", "error", err)
			}
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("reconciliation", "traffic"),
		gocron.WithName("traffic-sync"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered traffic sync job", "interval", interval)
	return nil
}

// RegisterDailyFeeJob schedules the fee debit at midnight business time.
func (m *SchedulerManager) RegisterDailyFeeJob(deductor FeeDeductor) error {
	_, err := m.scheduler.NewJob(
		gocron.CronJob("0 0 * * *", false),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			defer cancel()
			if err := deductor.Execute(ctx); err != nil {
				m.logger.Errorw("daily fee run failed", "error", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("reconciliation", "daily-fee"),
		gocron.WithName("daily-fee-debit"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered daily fee job", "schedule", "midnight business time")
	return nil
}

// RegisterCleanupRetryJob schedules the retry loop for failed remote
// deletes.
func (m *SchedulerManager) RegisterCleanupRetryJob(retrier CleanupRetrier, interval time.Duration) error {
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			if err := retrier.Execute(ctx); err != nil {
				m.logger.Errorw("cleanup retry run failed", "error", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("reconciliation", "cleanup"),
		gocron.WithName("cleanup-retry"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered cleanup retry job", "interval", interval)
	return nil
}

// Start starts the scheduler and all registered jobs.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.scheduler.Jobs()))
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	err := m.scheduler.Shutdown()
	m.started = false
	if err != nil {
		m.logger.Errorw("scheduler manager shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler manager stopped")
	return nil
}

// IsStarted returns whether the scheduler is running.
func (m *SchedulerManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}
