package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tmemler/roomsense/internal/infrastructure/logging"
)

// CycleRunner runs one fetch-insert cycle. Implemented by Pipeline.
type CycleRunner interface {
	RunCycle(ctx context.Context, sensorIDs []string) (CycleResult, error)
}

// Scheduler drives the pipeline on a fixed wall-clock cadence.
//
// The interval is a lower bound, not a hard guarantee: each iteration
// sleeps for max(0, interval - elapsed), so a cycle that overruns the
// interval is followed immediately by the next one. A failing or
// panicking cycle is contained and logged; only context cancellation
// stops the loop.
type Scheduler struct {
	interval  time.Duration
	sensorIDs []string
	runner    CycleRunner
	log       *logging.Logger
}

// NewScheduler creates a scheduler for the given sensors and cadence.
func NewScheduler(interval time.Duration, sensorIDs []string, runner CycleRunner, log *logging.Logger) *Scheduler {
	return &Scheduler{
		interval:  interval,
		sensorIDs: sensorIDs,
		runner:    runner,
		log:       log,
	}
}

// Run executes cycles until ctx is cancelled.
//
// Returns:
//   - error: ctx.Err() — the scheduler has no other way to stop
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("scheduler starting",
		"interval", s.interval,
		"sensors", len(s.sensorIDs),
	)

	for {
		start := time.Now()
		cycleLog := s.log.With("cycle_id", uuid.NewString())

		result := s.runCycleContained(ctx, cycleLog)

		elapsed := time.Since(start)
		sleep := s.interval - elapsed
		if sleep < 0 {
			sleep = 0
		}

		cycleLog.Info("cycle finished",
			"received", result.Received,
			"inserted", result.Inserted,
			"deduplicated", result.Deduplicated,
			"skipped", result.Skipped,
			"elapsed", elapsed.Round(time.Millisecond),
			"sleep", sleep.Round(time.Millisecond),
		)

		if ctx.Err() != nil {
			return ctx.Err()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
	}
}

// runCycleContained runs one cycle with panic and error containment:
// a single bad cycle must never terminate the daemon.
func (s *Scheduler) runCycleContained(ctx context.Context, log *logging.Logger) (result CycleResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("cycle panicked", "panic", r)
		}
	}()

	result, err := s.runner.RunCycle(ctx, s.sensorIDs)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		log.Error("cycle failed", "error", err)
	}
	return result
}
