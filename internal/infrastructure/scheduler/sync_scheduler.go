package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	appintegration "github.com/commercesync/backend/internal/application/integration"
	"github.com/commercesync/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// SweepRunner
// ---------------------------------------------------------------------------

// SweepRunner runs one synchronization pass over every tenant
type SweepRunner interface {
	SyncAll(ctx context.Context) (*appintegration.SweepReport, error)
}

// ---------------------------------------------------------------------------
// SyncSchedulerConfig
// ---------------------------------------------------------------------------

// SyncSchedulerConfig holds configuration for the periodic sweep
type SyncSchedulerConfig struct {
	// Enabled indicates if the scheduler is enabled
	Enabled bool
	// Interval is the time between two sweeps
	Interval time.Duration
	// RunTimeout bounds a single sweep
	RunTimeout time.Duration
	// RunOnStart triggers a sweep as soon as the scheduler starts
	RunOnStart bool
}

// DefaultSyncSchedulerConfig returns default configuration
func DefaultSyncSchedulerConfig() SyncSchedulerConfig {
	return SyncSchedulerConfig{
		Enabled:    true,
		Interval:   15 * time.Minute,
		RunTimeout: time.Hour,
	}
}

// Validate validates the configuration
func (c *SyncSchedulerConfig) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if c.RunTimeout <= 0 {
		return fmt.Errorf("%w: run timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// SweepRun records the outcome of one sweep
type SweepRun struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Report     *appintegration.SweepReport
	Err        error
}

// ---------------------------------------------------------------------------
// SyncScheduler
// ---------------------------------------------------------------------------

// SyncScheduler runs the tenant sweep on a fixed interval. Sweeps never
// overlap: a tick that fires while a sweep is still running is dropped.
type SyncScheduler struct {
	config SyncSchedulerConfig
	runner SweepRunner
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	sweeping  atomic.Bool

	lastMu  sync.RWMutex
	lastRun *SweepRun
}

// NewSyncScheduler creates a new sync scheduler
func NewSyncScheduler(config SyncSchedulerConfig, runner SweepRunner, logger *zap.Logger) (*SyncScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncScheduler{
		config: config,
		runner: runner,
		logger: logger,
	}, nil
}

// Start starts the sweep loop. It is a no-op when the scheduler is
// disabled or already running.
func (s *SyncScheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("Sync scheduler disabled")
		return nil
	}

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Sync scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("run_timeout", s.config.RunTimeout),
	)
	return nil
}

// Stop cancels the running sweep and waits for the loop to exit
func (s *SyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Sync scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Sync scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the loop is active
func (s *SyncScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// TriggerNow runs a sweep in the caller's goroutine
func (s *SyncScheduler) TriggerNow(ctx context.Context) (*SweepRun, error) {
	run, ok := s.sweep(ctx)
	if !ok {
		return nil, ErrSweepInProgress
	}
	return run, run.Err
}

// LastRun returns the most recent completed sweep, or nil
func (s *SyncScheduler) LastRun() *SweepRun {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()
	return s.lastRun
}

func (s *SyncScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	if s.config.RunOnStart {
		s.sweep(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, ok := s.sweep(ctx); !ok {
				s.logger.Warn("Previous sweep still running, tick skipped")
			}
		}
	}
}

// sweep returns false when another sweep holds the slot
func (s *SyncScheduler) sweep(ctx context.Context) (*SweepRun, bool) {
	if !s.sweeping.CompareAndSwap(false, true) {
		return nil, false
	}
	defer s.sweeping.Store(false)

	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	runCtx, span := telemetry.StartSpan(runCtx, "scheduler.sync_sweep",
		telemetry.WithSpanKind(trace.SpanKindInternal),
	)
	defer span.End()

	run := &SweepRun{StartedAt: time.Now()}
	s.logger.Info("Starting sync sweep")

	telemetry.WithProfilingLabels(runCtx, telemetry.OperationLabels("sync_sweep"), func(c context.Context) {
		run.Report, run.Err = s.runner.SyncAll(c)
	})
	run.FinishedAt = time.Now()

	if run.Err != nil {
		telemetry.RecordError(span, run.Err)
		s.logger.Error("Sync sweep failed",
			zap.Duration("elapsed", run.FinishedAt.Sub(run.StartedAt)),
			zap.Error(run.Err),
		)
	} else {
		s.logger.Info("Sync sweep completed",
			zap.Duration("elapsed", run.FinishedAt.Sub(run.StartedAt)),
			zap.Int("tenants", run.Report.Tenants),
			zap.Int("succeeded", run.Report.Succeeded),
			zap.Int("failed", run.Report.Failed),
			zap.Int("skipped", run.Report.Skipped),
		)
		telemetry.SetOK(span)
	}

	s.lastMu.Lock()
	s.lastRun = run
	s.lastMu.Unlock()
	return run, true
}
