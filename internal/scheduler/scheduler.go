// Package scheduler runs the ingestion cycle (C1-C7) on a fixed interval,
// following the same ticker-driven long-running-loop shape used elsewhere
// in this codebase for periodic background work.
package scheduler

import (
	"context"
	"time"

	"github.com/ignite/postal-converter-ja/internal/pkg/logger"
)

// Cycle runs one full ingestion cycle for the given batch timestamp.
type Cycle func(ctx context.Context, batchTimestamp time.Time) error

// Scheduler drives Cycle on a fixed interval.
type Scheduler struct {
	interval time.Duration
	runOnce  bool
	cycle    Cycle
}

// New returns a Scheduler. When runOnce is true, Run exits after the first
// completed cycle regardless of its outcome.
func New(interval time.Duration, runOnce bool, cycle Cycle) *Scheduler {
	return &Scheduler{interval: interval, runOnce: runOnce, cycle: cycle}
}

// Run blocks, executing one cycle at a time, until ctx is cancelled or
// (in run_once mode) the first cycle completes. On any cycle error it logs
// and sleeps interval before retrying; on success it also sleeps interval
// before the next cycle.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		batchTimestamp := time.Now().Truncate(time.Second)
		err := s.cycle(ctx, batchTimestamp)
		if err != nil {
			logger.Error("scheduler: ingestion cycle failed", "error", err.Error(), "batch_timestamp", batchTimestamp)
		} else {
			logger.Info("scheduler: ingestion cycle completed", "batch_timestamp", batchTimestamp)
		}

		if s.runOnce {
			return err
		}

		if !sleepOrDone(ctx, s.interval) {
			return nil
		}
	}
}

// sleepOrDone waits for d, returning false if ctx was cancelled first.
func sleepOrDone(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
