package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"gagyebu/internal/core"
)

type countingApplier struct {
	calls atomic.Int32
}

func (a *countingApplier) ApplyAll(context.Context) (core.ApplySummary, error) {
	a.calls.Add(1)
	return core.ApplySummary{}, nil
}

func TestDefaultSchedulerConfig(t *testing.T) {
	config := DefaultSchedulerConfig()

	if config.Interval != time.Hour {
		t.Errorf("expected Interval 1h, got %v", config.Interval)
	}
	if !config.RunOnStart {
		t.Error("expected RunOnStart to be true")
	}
}

func TestNewRecurringScheduler_FixesInterval(t *testing.T) {
	s := NewRecurringScheduler(&countingApplier{}, SchedulerConfig{})
	if s.config.Interval != time.Hour {
		t.Errorf("expected fallback interval 1h, got %v", s.config.Interval)
	}
	if s.IsRunning() {
		t.Error("scheduler should not be running initially")
	}
}

func TestRecurringScheduler_Lifecycle(t *testing.T) {
	applier := &countingApplier{}
	s := NewRecurringScheduler(applier, SchedulerConfig{Interval: 10 * time.Millisecond, RunOnStart: true})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(ctx); err == nil {
		t.Error("expected error when starting already running scheduler")
	}

	deadline := time.Now().Add(2 * time.Second)
	for applier.calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := applier.calls.Load(); n < 3 {
		t.Fatalf("expected at least 3 passes, got %d", n)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	if err := s.Stop(stopCtx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if s.IsRunning() {
		t.Error("scheduler should not be running after Stop")
	}
}

func TestRecurringScheduler_StopNotRunning(t *testing.T) {
	s := NewRecurringScheduler(&countingApplier{}, DefaultSchedulerConfig())
	if err := s.Stop(context.Background()); err != nil {
		t.Errorf("Stop should not error when not running: %v", err)
	}
}

type blockingApplier struct {
	started chan struct{}
	release chan struct{}
}

func (a *blockingApplier) ApplyAll(context.Context) (core.ApplySummary, error) {
	a.started <- struct{}{}
	<-a.release
	return core.ApplySummary{}, nil
}

func TestRecurringScheduler_StopTimeoutThenStopAgain(t *testing.T) {
	applier := &blockingApplier{started: make(chan struct{}, 1), release: make(chan struct{})}
	s := NewRecurringScheduler(applier, SchedulerConfig{Interval: time.Hour, RunOnStart: true})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	<-applier.started

	stopCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Stop(stopCtx); err != context.DeadlineExceeded {
		t.Fatalf("expected deadline exceeded while a pass is running, got %v", err)
	}
	if s.IsRunning() {
		t.Error("scheduler should not report running after Stop was signalled")
	}

	// A second Stop after a timed out one must not close the stop channel again.
	if err := s.Stop(context.Background()); err != nil {
		t.Errorf("second Stop: %v", err)
	}
	close(applier.release)
}
