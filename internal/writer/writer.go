// Package writer implements the Versioned Writer (C5): a sharded, parallel
// batched upsert with deadlock retry, chunk pacing, and a trailing sweep
// delete.
package writer

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"math/rand"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ignite/postal-converter-ja/internal/errs"
	"github.com/ignite/postal-converter-ja/internal/model"
	"github.com/ignite/postal-converter-ja/internal/pkg/logger"
)

// ChunkSize is the number of records per upserted transaction.
const ChunkSize = 200

// maxDeadlockRetries bounds how many times a chunk is retried after a
// deadlock before the shard aborts.
const maxDeadlockRetries = 3

// Chunk pacing and deadlock backoff both live in [minBackoff, maxBackoff],
// matching the ~200-500ms window called for by the writer's contract.
const (
	minBackoff = 200 * time.Millisecond
	maxBackoff = 500 * time.Millisecond
)

// Store is the subset of the store's capability set the writer needs.
type Store interface {
	BeginTx(ctx context.Context) (*sql.Tx, error)
	IsDeadlock(err error) bool
	Sweep(ctx context.Context, batchTimestamp time.Time) (int64, error)
}

// Upserter performs one chunk's upsert inside an open transaction.
type Upserter func(ctx context.Context, tx *sql.Tx, records []model.PostalRecord, batchTimestamp time.Time) error

// Result reports what one Write call accomplished, feeding the audit row.
type Result struct {
	DeletedCount int64
}

// Write partitions records into W = max(1, nCPU-1) contiguous shards, each
// of which upserts its records in chunks of ChunkSize inside its own
// transaction, retrying a chunk up to three times on a reported deadlock.
// After every shard succeeds, it sweeps rows not touched by this run.
func Write(ctx context.Context, st Store, upsert Upserter, records []model.PostalRecord, batchTimestamp time.Time) (Result, error) {
	shards := partition(records, workerCount())

	var g errgroup.Group
	for i, shard := range shards {
		shard := shard
		shardIdx := i
		g.Go(func() error {
			return runShard(ctx, st, upsert, shard, batchTimestamp, shardIdx)
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	deleted, err := st.Sweep(ctx, batchTimestamp)
	if err != nil {
		return Result{}, err
	}
	return Result{DeletedCount: deleted}, nil
}

// workerCount returns max(1, nCPU-1).
func workerCount() int {
	n := runtime.NumCPU() - 1
	if n < 1 {
		n = 1
	}
	return n
}

// partition splits records contiguously into up to w shards.
func partition(records []model.PostalRecord, w int) [][]model.PostalRecord {
	if len(records) == 0 {
		return nil
	}
	if w > len(records) {
		w = len(records)
	}
	shards := make([][]model.PostalRecord, 0, w)
	base := len(records) / w
	rem := len(records) % w
	start := 0
	for i := 0; i < w; i++ {
		size := base
		if i < rem {
			size++
		}
		if size == 0 {
			continue
		}
		shards = append(shards, records[start:start+size])
		start += size
	}
	return shards
}

func runShard(ctx context.Context, st Store, upsert Upserter, shard []model.PostalRecord, batchTimestamp time.Time, shardIdx int) error {
	for start := 0; start < len(shard); start += ChunkSize {
		end := start + ChunkSize
		if end > len(shard) {
			end = len(shard)
		}
		chunk := shard[start:end]

		if err := upsertChunkWithRetry(ctx, st, upsert, chunk, batchTimestamp, shardIdx); err != nil {
			return err
		}

		// Inter-chunk pacing bounds connection-pool pressure across shards.
		if end < len(shard) {
			sleep(ctx, jitteredBackoff(0))
		}
	}
	return nil
}

func upsertChunkWithRetry(ctx context.Context, st Store, upsert Upserter, chunk []model.PostalRecord, batchTimestamp time.Time, shardIdx int) error {
	var lastErr error
	for attempt := 0; attempt <= maxDeadlockRetries; attempt++ {
		tx, err := st.BeginTx(ctx)
		if err != nil {
			return err
		}

		err = upsert(ctx, tx, chunk, batchTimestamp)
		if err == nil {
			if commitErr := tx.Commit(); commitErr != nil {
				return commitErr
			}
			return nil
		}

		_ = tx.Rollback()

		if !st.IsDeadlock(err) {
			return err
		}

		lastErr = err
		if attempt < maxDeadlockRetries {
			logger.Warn("writer: retrying chunk after deadlock",
				"shard", shardIdx, "attempt", attempt+1, "error", err.Error())
			sleep(ctx, jitteredBackoff(attempt))
		}
	}
	return errors.Join(errs.ErrDeadlock, lastErr)
}

// jitteredBackoff returns a random duration in [minBackoff, maxBackoff],
// widening slightly with attempt the way httpretry's exponential-with-
// jitter backoff does, but clamped to the writer's tighter 200-500ms
// window rather than httpretry's network-call range.
func jitteredBackoff(attempt int) time.Duration {
	span := float64(maxBackoff - minBackoff)
	growth := math.Min(1, float64(attempt)*0.3)
	jittered := time.Duration(rand.Float64()*span*(1+growth)) + minBackoff
	if jittered > maxBackoff {
		jittered = maxBackoff
	}
	return jittered
}

func sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
