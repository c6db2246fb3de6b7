package writer

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/ignite/postal-converter-ja/internal/model"
)

type fakeStore struct {
	db           *sql.DB
	sweepCalled  bool
	sweptAt      time.Time
	deletedCount int64
}

func (f *fakeStore) BeginTx(ctx context.Context) (*sql.Tx, error) { return f.db.BeginTx(ctx, nil) }

func (f *fakeStore) IsDeadlock(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == "40P01"
}

func (f *fakeStore) Sweep(ctx context.Context, batchTimestamp time.Time) (int64, error) {
	f.sweepCalled = true
	f.sweptAt = batchTimestamp
	return f.deletedCount, nil
}

func records(n int) []model.PostalRecord {
	out := make([]model.PostalRecord, n)
	for i := range out {
		out[i] = model.PostalRecord{ZipCode: "1000001", PrefectureID: int16(i)}
	}
	return out
}

func TestWriteUpsertsAndSweeps(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// One record per worker, so every shard receives a single one-record
	// chunk; expect one begin/exec/commit cycle per shard.
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < workerCount(); i++ {
		mock.ExpectBegin()
		mock.ExpectExec("").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
	}

	fs := &fakeStore{db: db, deletedCount: 7}
	upsert := func(ctx context.Context, tx *sql.Tx, recs []model.PostalRecord, T time.Time) error {
		_, err := tx.ExecContext(ctx, "INSERT")
		return err
	}

	result, err := Write(context.Background(), fs, upsert, records(workerCount()), time.Now())
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if !fs.sweepCalled {
		t.Fatal("expected Sweep to be called after all shards succeed")
	}
	if result.DeletedCount != 7 {
		t.Fatalf("DeletedCount = %d, want 7", result.DeletedCount)
	}
}

func TestWriteRetriesOnDeadlockThenSucceeds(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("").WillReturnError(&pq.Error{Code: "40P01"})
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectExec("").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	fs := &fakeStore{db: db}
	attempt := 0
	upsert := func(ctx context.Context, tx *sql.Tx, recs []model.PostalRecord, T time.Time) error {
		attempt++
		_, err := tx.ExecContext(ctx, "INSERT")
		return err
	}

	_, err = Write(context.Background(), fs, upsert, records(1), time.Now())
	if err != nil {
		t.Fatalf("Write returned error after deadlock retry: %v", err)
	}
	if attempt != 2 {
		t.Fatalf("upsert called %d times, want 2 (initial + 1 retry)", attempt)
	}
}

func TestPartitionSplitsContiguously(t *testing.T) {
	recs := records(7)
	shards := partition(recs, 3)

	total := 0
	for _, s := range shards {
		total += len(s)
	}
	if total != len(recs) {
		t.Fatalf("partitioned total = %d, want %d", total, len(recs))
	}
	if len(shards) > 3 {
		t.Fatalf("got %d shards, want at most 3", len(shards))
	}
}
