package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/tmemler/roomsense/internal/infrastructure/logging"
)

// stubRunner records cycle start times, optionally delays or panics,
// and cancels the context after a fixed number of cycles.
type stubRunner struct {
	starts  []time.Time
	delay   time.Duration
	panicOn int
	maxRuns int
	cancel  context.CancelFunc
}

func (r *stubRunner) RunCycle(context.Context, []string) (CycleResult, error) {
	r.starts = append(r.starts, time.Now())
	if len(r.starts) >= r.maxRuns {
		r.cancel()
	}
	if r.panicOn != 0 && len(r.starts) == r.panicOn {
		panic("injected cycle panic")
	}
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	return CycleResult{}, nil
}

func runScheduler(t *testing.T, interval time.Duration, runner *stubRunner) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	runner.cancel = cancel

	s := NewScheduler(interval, []string{"aa"}, runner, logging.Default("test"))
	if err := s.Run(ctx); err != context.Canceled && err != context.DeadlineExceeded {
		t.Fatalf("Run() error = %v, want context cancellation", err)
	}
	if len(runner.starts) < runner.maxRuns {
		t.Fatalf("ran %d cycles before the safety timeout, want %d", len(runner.starts), runner.maxRuns)
	}
}

func TestRun_SleepsRemainderOfInterval(t *testing.T) {
	runner := &stubRunner{maxRuns: 2}
	runScheduler(t, 150*time.Millisecond, runner)

	gap := runner.starts[1].Sub(runner.starts[0])
	if gap < 140*time.Millisecond {
		t.Errorf("gap between fast cycles = %v, want about the full interval", gap)
	}
}

func TestRun_OverrunningCycleStartsNextImmediately(t *testing.T) {
	// The cycle takes longer than the interval, so the remaining sleep
	// is clamped to zero and the next cycle follows at once.
	runner := &stubRunner{maxRuns: 2, delay: 120 * time.Millisecond}
	runScheduler(t, 50*time.Millisecond, runner)

	gap := runner.starts[1].Sub(runner.starts[0])
	if gap > 170*time.Millisecond {
		t.Errorf("gap after overrunning cycle = %v, want roughly the cycle duration with no added sleep", gap)
	}
}

func TestRun_PanickingCycleDoesNotStopTheLoop(t *testing.T) {
	runner := &stubRunner{maxRuns: 2, panicOn: 1}
	runScheduler(t, 10*time.Millisecond, runner)
}

func TestRun_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &stubRunner{maxRuns: 99, cancel: cancel}
	s := NewScheduler(time.Hour, []string{"aa"}, runner, logging.Default("test"))

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after context cancellation")
	}
}
