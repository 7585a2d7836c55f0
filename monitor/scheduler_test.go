package monitor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func TestSchedulerRunsImmediately(t *testing.T) {
	calls := make(chan int, 4)
	s := NewScheduler(func(ctx context.Context, siteID int) error {
		calls <- siteID
		return nil
	}, discardLogger())
	s.Run()
	defer s.Shutdown()

	s.Start(7, time.Hour)

	select {
	case id := <-calls:
		if id != 7 {
			t.Errorf("Expected site 7, got %d", id)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected an immediate run")
	}

	if !s.Active(7) {
		t.Errorf("Expected site 7 to be active")
	}
}

func TestSchedulerStop(t *testing.T) {
	s := NewScheduler(func(ctx context.Context, siteID int) error { return nil }, discardLogger())
	s.Run()
	defer s.Shutdown()

	if s.Stop(1) {
		t.Errorf("Expected stop of unknown site to report false")
	}

	s.Start(1, time.Hour)
	if !s.Stop(1) {
		t.Errorf("Expected stop of active site to report true")
	}
	if s.Stop(1) {
		t.Errorf("Expected second stop to report false")
	}
	if got := s.RunNow(1); got != RunNotFound {
		t.Errorf("Expected RunNow on stopped site to report RunNotFound, got %v", got)
	}
}

func TestSchedulerRestartReplacesTask(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler(func(ctx context.Context, siteID int) error {
		calls.Add(1)
		return nil
	}, discardLogger())
	s.Run()
	defer s.Shutdown()

	s.Start(1, time.Hour)
	s.Start(1, time.Hour)
	s.Start(2, time.Hour)

	waitFor(t, time.Second, func() bool { return calls.Load() >= 2 })

	if n := s.StopAll(); n != 2 {
		t.Errorf("Expected 2 active tasks, got %d", n)
	}
}

func TestSchedulerNoOverlapPerSite(t *testing.T) {
	var running, maxRunning, calls atomic.Int32
	release := make(chan struct{})

	s := NewScheduler(func(ctx context.Context, siteID int) error {
		calls.Add(1)
		n := running.Add(1)
		for {
			m := maxRunning.Load()
			if n <= m || maxRunning.CompareAndSwap(m, n) {
				break
			}
		}
		<-release
		running.Add(-1)
		return nil
	}, discardLogger())
	s.Run()
	defer s.Shutdown()

	s.Start(1, time.Hour)
	waitFor(t, time.Second, func() bool { return running.Load() == 1 })

	for i := 0; i < 5; i++ {
		if got := s.RunNow(1); got != RunMerged {
			t.Errorf("Expected RunNow during a run to report RunMerged, got %v", got)
		}
	}
	time.Sleep(100 * time.Millisecond)
	close(release)

	waitFor(t, time.Second, func() bool { return running.Load() == 0 })
	if maxRunning.Load() != 1 {
		t.Errorf("Expected at most one concurrent run, got %d", maxRunning.Load())
	}
	if calls.Load() != 1 {
		t.Errorf("Expected overlapping runs to be skipped, got %d calls", calls.Load())
	}
}

func TestSchedulerSitesRunIndependently(t *testing.T) {
	block := make(chan struct{})
	var fastCalls atomic.Int32

	s := NewScheduler(func(ctx context.Context, siteID int) error {
		if siteID == 1 {
			select {
			case <-block:
			case <-ctx.Done():
			}
			return nil
		}
		fastCalls.Add(1)
		return nil
	}, discardLogger())
	s.Run()
	defer s.Shutdown()
	defer close(block)

	s.Start(1, time.Hour)
	s.Start(2, time.Hour)

	waitFor(t, time.Second, func() bool { return fastCalls.Load() == 1 })
}

func TestSchedulerSurvivesErrorsAndPanics(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler(func(ctx context.Context, siteID int) error {
		switch calls.Add(1) {
		case 1:
			panic("boom")
		case 2:
			return errors.New("probe pipeline failed")
		}
		return nil
	}, discardLogger())
	s.Run()
	defer s.Shutdown()

	s.Start(1, time.Second)

	waitFor(t, 5*time.Second, func() bool { return calls.Load() >= 3 })
	if !s.Active(1) {
		t.Errorf("Expected schedule to survive panics and errors")
	}
}

func TestSchedulerStopCancelsInFlight(t *testing.T) {
	var mu sync.Mutex
	var cancelled bool
	started := make(chan struct{})
	done := make(chan struct{})

	s := NewScheduler(func(ctx context.Context, siteID int) error {
		close(started)
		<-ctx.Done()
		mu.Lock()
		cancelled = true
		mu.Unlock()
		close(done)
		return nil
	}, discardLogger())
	s.Run()
	defer s.Shutdown()

	s.Start(1, time.Hour)
	<-started
	s.Stop(1)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Expected in-flight job to observe cancellation")
	}

	mu.Lock()
	defer mu.Unlock()
	if !cancelled {
		t.Errorf("Expected context to be cancelled")
	}
}
