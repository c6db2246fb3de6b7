// Package audit computes and writes the per-run audit row and snapshot,
// and implements the rollback operation.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/ignite/postal-converter-ja/internal/errs"
	"github.com/ignite/postal-converter-ja/internal/model"
)

// Store is the subset of the store's capability set the audit/snapshot/
// rollback logic needs.
type Store interface {
	CountTouched(ctx context.Context, batchTimestamp time.Time) (int64, error)
	CountInserted(ctx context.Context, batchTimestamp time.Time) (int64, error)
	CountTotal(ctx context.Context) (int64, error)
	WriteSnapshot(ctx context.Context, dataVersion string) error
	CountSnapshots(ctx context.Context, dataVersion string) (int64, error)
	Rollback(ctx context.Context, dataVersion string) (int64, error)
	InsertAudit(ctx context.Context, rec model.AuditRecord) error
}

// RunSummary holds the figures Finalize needs beyond what it queries
// itself: the values only the caller (the scheduler cycle) knows.
type RunSummary struct {
	DataVersion    string
	DatabaseType   string
	SourceURL      string
	RunStartedAt   time.Time
	RunFinishedAt  time.Time
	BatchTimestamp time.Time
	RecordsInFeed  int64
	DeletedCount   int64
}

// Finalize computes inserted_count/updated_count/total_count from the live
// table per the C6 formulas, writes the snapshot, and writes a success
// audit row. Call RecordFailure instead if a prior step in the cycle
// already failed.
func Finalize(ctx context.Context, st Store, summary RunSummary) error {
	touched, err := st.CountTouched(ctx, summary.BatchTimestamp)
	if err != nil {
		return fmt.Errorf("audit: counting touched rows: %w", err)
	}
	inserted, err := st.CountInserted(ctx, summary.BatchTimestamp)
	if err != nil {
		return fmt.Errorf("audit: counting inserted rows: %w", err)
	}
	updated := touched - inserted
	if updated < 0 {
		updated = 0
	}
	total, err := st.CountTotal(ctx)
	if err != nil {
		return fmt.Errorf("audit: counting total rows: %w", err)
	}

	if err := st.WriteSnapshot(ctx, summary.DataVersion); err != nil {
		return fmt.Errorf("audit: writing snapshot: %w", err)
	}

	rec := model.AuditRecord{
		DataVersion:    summary.DataVersion,
		DatabaseType:   summary.DatabaseType,
		SourceURL:      summary.SourceURL,
		RunStartedAt:   summary.RunStartedAt,
		RunFinishedAt:  summary.RunFinishedAt,
		BatchTimestamp: summary.BatchTimestamp,
		RecordsInFeed:  summary.RecordsInFeed,
		InsertedCount:  inserted,
		UpdatedCount:   updated,
		DeletedCount:   summary.DeletedCount,
		TotalCount:     total,
		Status:         model.AuditSuccess,
	}
	return st.InsertAudit(ctx, rec)
}

// RecordFailure writes a failed audit row; inserted/updated/deleted/total
// are left at zero per the failure-handling contract.
func RecordFailure(ctx context.Context, st Store, summary RunSummary, cause error) error {
	rec := model.AuditRecord{
		DataVersion:    summary.DataVersion,
		DatabaseType:   summary.DatabaseType,
		SourceURL:      summary.SourceURL,
		RunStartedAt:   summary.RunStartedAt,
		RunFinishedAt:  summary.RunFinishedAt,
		BatchTimestamp: summary.BatchTimestamp,
		RecordsInFeed:  summary.RecordsInFeed,
		Status:         model.AuditFailed,
		ErrorMessage:   cause.Error(),
	}
	return st.InsertAudit(ctx, rec)
}

// Rollback restores the live table from the snapshot for targetVersion,
// failing with errs.ErrNoSnapshot if no snapshot rows exist under that
// version. On success it writes a rollback audit row under a fresh,
// "r"-prefixed data version and returns the number of restored rows.
func Rollback(ctx context.Context, st Store, targetVersion, databaseType string, now time.Time) (int64, error) {
	count, err := st.CountSnapshots(ctx, targetVersion)
	if err != nil {
		return 0, fmt.Errorf("audit: checking snapshot existence: %w", err)
	}
	if count == 0 {
		return 0, errs.ErrNoSnapshot
	}

	restored, err := st.Rollback(ctx, targetVersion)
	if err != nil {
		return 0, fmt.Errorf("audit: restoring snapshot: %w", err)
	}

	rollbackVersion := model.NewRollbackVersion(now)
	rec := model.AuditRecord{
		DataVersion:    rollbackVersion,
		DatabaseType:   databaseType,
		SourceURL:      "rollback_cli:" + targetVersion,
		RunStartedAt:   now,
		RunFinishedAt:  now,
		BatchTimestamp: now,
		InsertedCount:  restored,
		TotalCount:     restored,
		Status:         model.AuditRollback,
	}
	if err := st.InsertAudit(ctx, rec); err != nil {
		return 0, fmt.Errorf("audit: writing rollback audit row: %w", err)
	}
	return restored, nil
}
