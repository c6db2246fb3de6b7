package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ignite/postal-converter-ja/internal/errs"
	"github.com/ignite/postal-converter-ja/internal/model"
)

type fakeStore struct {
	touched, inserted, total int64
	snapshotCount            int64
	restoredRows             int64
	insertedAudits           []model.AuditRecord
	snapshotWritten          bool
	rollbackCalled           bool
}

func (f *fakeStore) CountTouched(ctx context.Context, T time.Time) (int64, error)  { return f.touched, nil }
func (f *fakeStore) CountInserted(ctx context.Context, T time.Time) (int64, error) { return f.inserted, nil }
func (f *fakeStore) CountTotal(ctx context.Context) (int64, error)                 { return f.total, nil }
func (f *fakeStore) WriteSnapshot(ctx context.Context, dataVersion string) error {
	f.snapshotWritten = true
	return nil
}
func (f *fakeStore) CountSnapshots(ctx context.Context, dataVersion string) (int64, error) {
	return f.snapshotCount, nil
}
func (f *fakeStore) Rollback(ctx context.Context, dataVersion string) (int64, error) {
	f.rollbackCalled = true
	return f.restoredRows, nil
}
func (f *fakeStore) InsertAudit(ctx context.Context, rec model.AuditRecord) error {
	f.insertedAudits = append(f.insertedAudits, rec)
	return nil
}

func TestFinalizeComputesInsertedAndUpdated(t *testing.T) {
	fs := &fakeStore{touched: 10, inserted: 4, total: 100}
	summary := RunSummary{DataVersion: "v1", BatchTimestamp: time.Now()}

	if err := Finalize(context.Background(), fs, summary); err != nil {
		t.Fatalf("Finalize returned error: %v", err)
	}
	if !fs.snapshotWritten {
		t.Fatal("expected snapshot to be written")
	}
	if len(fs.insertedAudits) != 1 {
		t.Fatalf("expected one audit row, got %d", len(fs.insertedAudits))
	}
	rec := fs.insertedAudits[0]
	if rec.InsertedCount != 4 {
		t.Errorf("InsertedCount = %d, want 4", rec.InsertedCount)
	}
	if rec.UpdatedCount != 6 {
		t.Errorf("UpdatedCount = %d, want 6 (touched-inserted)", rec.UpdatedCount)
	}
	if rec.Status != model.AuditSuccess {
		t.Errorf("Status = %q, want success", rec.Status)
	}
}

func TestFinalizeUpdatedNeverNegative(t *testing.T) {
	fs := &fakeStore{touched: 3, inserted: 5, total: 10}
	summary := RunSummary{DataVersion: "v1", BatchTimestamp: time.Now()}

	if err := Finalize(context.Background(), fs, summary); err != nil {
		t.Fatalf("Finalize returned error: %v", err)
	}
	if fs.insertedAudits[0].UpdatedCount != 0 {
		t.Errorf("UpdatedCount = %d, want 0 (clamped)", fs.insertedAudits[0].UpdatedCount)
	}
}

func TestRecordFailureWritesFailedStatus(t *testing.T) {
	fs := &fakeStore{}
	summary := RunSummary{DataVersion: "v1"}
	if err := RecordFailure(context.Background(), fs, summary, errors.New("boom")); err != nil {
		t.Fatalf("RecordFailure returned error: %v", err)
	}
	rec := fs.insertedAudits[0]
	if rec.Status != model.AuditFailed {
		t.Errorf("Status = %q, want failed", rec.Status)
	}
	if rec.ErrorMessage != "boom" {
		t.Errorf("ErrorMessage = %q, want boom", rec.ErrorMessage)
	}
}

func TestRollbackFailsWithoutSnapshot(t *testing.T) {
	fs := &fakeStore{snapshotCount: 0}
	_, err := Rollback(context.Background(), fs, "v1", "postgres", time.Now())
	if !errors.Is(err, errs.ErrNoSnapshot) {
		t.Fatalf("Rollback error = %v, want errs.ErrNoSnapshot", err)
	}
	if fs.rollbackCalled {
		t.Fatal("Rollback store call should not happen without a snapshot")
	}
}

func TestRollbackWritesRollbackAuditRow(t *testing.T) {
	fs := &fakeStore{snapshotCount: 3, restoredRows: 3}
	restored, err := Rollback(context.Background(), fs, "v1", "postgres", time.Now())
	if err != nil {
		t.Fatalf("Rollback returned error: %v", err)
	}
	if restored != 3 {
		t.Fatalf("restored = %d, want 3", restored)
	}
	rec := fs.insertedAudits[0]
	if rec.Status != model.AuditRollback {
		t.Errorf("Status = %q, want rollback", rec.Status)
	}
	if rec.SourceURL != "rollback_cli:v1" {
		t.Errorf("SourceURL = %q, want rollback_cli:v1", rec.SourceURL)
	}
	if rec.DataVersion[0] != 'r' {
		t.Errorf("DataVersion = %q, want r-prefixed", rec.DataVersion)
	}
}
