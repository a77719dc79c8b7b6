package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gagyebu/internal/core"
	applog "gagyebu/internal/log"
)

// SchedulerConfig holds configuration for the recurring scheduler
type SchedulerConfig struct {
	// Interval between two apply passes (default: 1h)
	Interval time.Duration
	// RunOnStart triggers a pass right after Start (default: true)
	RunOnStart bool
}

func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Interval:   time.Hour,
		RunOnStart: true,
	}
}

// MonthlyApplier is the part of RecurringService the scheduler drives.
type MonthlyApplier interface {
	ApplyAll(ctx context.Context) (core.ApplySummary, error)
}

// RecurringScheduler runs ApplyAll on a ticker. Because a pass never creates
// a second entry for the same template and month, the interval only bounds
// how late an entry shows up after its month starts.
type RecurringScheduler struct {
	applier MonthlyApplier
	config  SchedulerConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewRecurringScheduler(applier MonthlyApplier, config SchedulerConfig) *RecurringScheduler {
	if config.Interval <= 0 {
		config.Interval = DefaultSchedulerConfig().Interval
	}
	return &RecurringScheduler{applier: applier, config: config}
}

// Start begins the loop. Returns an error if already running.
func (s *RecurringScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("recurring scheduler is already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	go s.runLoop(ctx, stopCh, doneCh)

	slog.InfoContext(ctx, "Recurring scheduler started", "interval", s.config.Interval)
	return nil
}

// Stop signals the loop and waits for the pass in progress to finish. The
// scheduler counts as stopped once signalled, even if the wait times out.
func (s *RecurringScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	stopCh, doneCh := s.stopCh, s.doneCh
	s.running = false
	s.stopCh, s.doneCh = nil, nil
	s.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Recurring scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Recurring scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *RecurringScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *RecurringScheduler) runLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	if s.config.RunOnStart {
		s.runPass(ctx)
	}

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runPass(ctx)
		}
	}
}

func (s *RecurringScheduler) runPass(ctx context.Context) {
	summary, err := s.applier.ApplyAll(ctx)
	fields := applog.NewFields().WithSummary(summary)
	if err != nil {
		applog.FromContext(ctx).LogError(ctx, "Recurring pass failed", err, applog.OpApply, fields)
		return
	}
	fields["next_check"] = time.Now().Add(s.config.Interval).Format("15:04:05")
	slog.InfoContext(ctx, "Recurring pass complete", fields.ToSlice()...)
}
