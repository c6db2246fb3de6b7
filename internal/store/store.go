package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ignite/postal-converter-ja/internal/model"
)

// Store wraps a *sql.DB for one of the three supported relational backends
// and provides the capability set the ingestion writer, audit/snapshot
// logic, and query engine need: parameterized multi-row upsert, sweep
// delete, snapshot/rollback, and read queries.
type Store struct {
	db      *sql.DB
	dialect dialect
}

// DialectName reports which backend this Store is configured for.
func (s *Store) DialectName() string { return s.dialect.name() }

// Ping verifies connectivity, used by the readiness handler's SELECT 1.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "SELECT 1")
	return err
}

// Close releases the underlying connection pool.
func (s *Store) Close() error { return s.db.Close() }

// IsDeadlock reports whether err represents a retryable write conflict on
// this backend (a genuine deadlock on Postgres/MySQL, or SQLITE_BUSY/LOCKED
// on SQLite).
func (s *Store) IsDeadlock(err error) bool { return s.dialect.isDeadlock(err) }

func (s *Store) ensureSchema(ctx context.Context) error {
	for _, stmt := range splitStatements(s.dialect.schema()) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: applying schema statement %q: %w", truncate(stmt, 80), err)
		}
	}
	return nil
}

func splitStatements(schema string) []string {
	var out []string
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// BeginTx starts a transaction for the caller (the writer commits or rolls
// back a chunk at a time; rollback handles its own transaction as well).
func (s *Store) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, nil)
}

const upsertRowColumns = 6 // zip_code, prefecture_id, city_id, prefecture, city, town

// sharesTimestampParam reports whether the dialect's placeholder syntax
// supports referencing the same bound parameter twice by position
// (Postgres's $N). MySQL's and SQLite's `?` placeholders are consumed in
// positional order by database/sql, so those dialects bind the timestamp
// twice per row instead.
func (s *Store) sharesTimestampParam() bool { return s.dialect.name() == "postgres" }

func (s *Store) buildUpsertSQL(n int) string {
	shared := s.sharesTimestampParam()

	var sb strings.Builder
	sb.WriteString("INSERT INTO postal_codes (zip_code, prefecture_id, city_id, prefecture, city, town, created_at, updated_at) VALUES ")

	pos := 1
	var tsPos int
	if shared {
		tsPos = n*upsertRowColumns + 1
	}

	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j := 0; j < upsertRowColumns; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(s.dialect.placeholder(pos))
			pos++
		}
		for k := 0; k < 2; k++ {
			sb.WriteString(", ")
			if shared {
				sb.WriteString(s.dialect.placeholder(tsPos))
			} else {
				sb.WriteString(s.dialect.placeholder(pos))
				pos++
			}
		}
		sb.WriteString(")")
	}

	sb.WriteString(" ")
	sb.WriteString(s.dialect.upsertConflictClause())
	return sb.String()
}

func (s *Store) buildUpsertArgs(records []model.PostalRecord, batchTimestamp time.Time) []interface{} {
	shared := s.sharesTimestampParam()
	args := make([]interface{}, 0, len(records)*8)
	for _, r := range records {
		args = append(args, r.ZipCode, r.PrefectureID, r.CityID, r.Prefecture, r.City, r.Town)
		if !shared {
			args = append(args, batchTimestamp, batchTimestamp)
		}
	}
	if shared {
		args = append(args, batchTimestamp)
	}
	return args
}

// UpsertChunk runs one parameterized multi-row upsert for records inside
// tx, per the C5 writer's chunk contract: conflict target
// (zip_code, prefecture_id, city, town); on conflict, prefecture/town/
// updated_at are overwritten and created_at is preserved; a fresh row gets
// created_at = updated_at = batchTimestamp.
func (s *Store) UpsertChunk(ctx context.Context, tx *sql.Tx, records []model.PostalRecord, batchTimestamp time.Time) error {
	if len(records) == 0 {
		return nil
	}
	query := s.buildUpsertSQL(len(records))
	args := s.buildUpsertArgs(records, batchTimestamp)
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// Sweep deletes rows untouched by the current run and returns the deleted
// row count.
func (s *Store) Sweep(ctx context.Context, batchTimestamp time.Time) (int64, error) {
	query := fmt.Sprintf("DELETE FROM postal_codes WHERE updated_at < %s", s.dialect.placeholder(1))
	res, err := s.db.ExecContext(ctx, query, batchTimestamp)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountTouched returns count(updated_at = T).
func (s *Store) CountTouched(ctx context.Context, batchTimestamp time.Time) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM postal_codes WHERE updated_at = %s", s.dialect.placeholder(1))
	var n int64
	err := s.db.QueryRowContext(ctx, query, batchTimestamp).Scan(&n)
	return n, err
}

// CountInserted returns count(updated_at = T AND created_at = T).
func (s *Store) CountInserted(ctx context.Context, batchTimestamp time.Time) (int64, error) {
	query := fmt.Sprintf(
		"SELECT COUNT(*) FROM postal_codes WHERE updated_at = %s AND created_at = %s",
		s.dialect.placeholder(1), s.dialect.placeholder(2),
	)
	var n int64
	err := s.db.QueryRowContext(ctx, query, batchTimestamp, batchTimestamp).Scan(&n)
	return n, err
}

// CountTotal returns count(*) over the live table.
func (s *Store) CountTotal(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM postal_codes").Scan(&n)
	return n, err
}

// WriteSnapshot copies the current live table into postal_codes_snapshots
// under dataVersion, ignoring rows that already exist under that version
// (conflict-ignore on the snapshot primary key).
func (s *Store) WriteSnapshot(ctx context.Context, dataVersion string) error {
	var query string
	switch s.dialect.name() {
	case "mysql":
		query = fmt.Sprintf(`INSERT IGNORE INTO postal_codes_snapshots
			(data_version, zip_code, prefecture_id, city_id, prefecture, city, town, created_at, updated_at)
			SELECT %s, zip_code, prefecture_id, city_id, prefecture, city, town, created_at, updated_at
			FROM postal_codes`, s.dialect.placeholder(1))
	default:
		query = fmt.Sprintf(`INSERT INTO postal_codes_snapshots
			(data_version, zip_code, prefecture_id, city_id, prefecture, city, town, created_at, updated_at)
			SELECT %s, zip_code, prefecture_id, city_id, prefecture, city, town, created_at, updated_at
			FROM postal_codes WHERE true
			ON CONFLICT (data_version, zip_code, prefecture_id, city, town) DO NOTHING`, s.dialect.placeholder(1))
	}
	_, err := s.db.ExecContext(ctx, query, dataVersion)
	return err
}

// CountSnapshots returns how many snapshot rows exist for dataVersion.
func (s *Store) CountSnapshots(ctx context.Context, dataVersion string) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM postal_codes_snapshots WHERE data_version = %s", s.dialect.placeholder(1))
	var n int64
	err := s.db.QueryRowContext(ctx, query, dataVersion).Scan(&n)
	return n, err
}

// Rollback replaces the live table's contents with the snapshot rows for
// dataVersion, in one transaction, and returns the number of restored
// rows.
func (s *Store) Rollback(ctx context.Context, dataVersion string) (int64, error) {
	tx, err := s.BeginTx(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM postal_codes"); err != nil {
		return 0, err
	}

	insertQuery := fmt.Sprintf(`INSERT INTO postal_codes
		(zip_code, prefecture_id, city_id, prefecture, city, town, created_at, updated_at)
		SELECT zip_code, prefecture_id, city_id, prefecture, city, town, created_at, updated_at
		FROM postal_codes_snapshots WHERE data_version = %s`, s.dialect.placeholder(1))
	res, err := tx.ExecContext(ctx, insertQuery, dataVersion)
	if err != nil {
		return 0, err
	}
	restored, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return restored, nil
}

// InsertAudit writes one audit row per ingestion or rollback run.
func (s *Store) InsertAudit(ctx context.Context, rec model.AuditRecord) error {
	cols := []string{
		"data_version", "database_type", "source_url", "run_started_at", "run_finished_at",
		"batch_timestamp", "records_in_feed", "inserted_count", "updated_count", "deleted_count",
		"total_count", "status", "error_message",
	}
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = s.dialect.placeholder(i + 1)
	}
	query := fmt.Sprintf("INSERT INTO data_update_audits (%s) VALUES (%s)",
		strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	var errMsg interface{}
	if rec.ErrorMessage != "" {
		errMsg = rec.ErrorMessage
	}

	_, err := s.db.ExecContext(ctx, query,
		rec.DataVersion, rec.DatabaseType, rec.SourceURL, rec.RunStartedAt, rec.RunFinishedAt,
		rec.BatchTimestamp, rec.RecordsInFeed, rec.InsertedCount, rec.UpdatedCount, rec.DeletedCount,
		rec.TotalCount, string(rec.Status), errMsg,
	)
	return err
}

const selectColumns = "zip_code, prefecture_id, city_id, prefecture, city, town"

func scanPostalRecords(rows *sql.Rows) ([]model.PostalRecord, error) {
	defer rows.Close()
	var out []model.PostalRecord
	for rows.Next() {
		var r model.PostalRecord
		if err := rows.Scan(&r.ZipCode, &r.PrefectureID, &r.CityID, &r.Prefecture, &r.City, &r.Town); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetByZip returns every row with an exact zip_code match.
func (s *Store) GetByZip(ctx context.Context, zip string) ([]model.PostalRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM postal_codes WHERE zip_code = %s", selectColumns, s.dialect.placeholder(1))
	rows, err := s.db.QueryContext(ctx, query, zip)
	if err != nil {
		return nil, err
	}
	return scanPostalRecords(rows)
}

// ListPrefectures returns distinct (prefecture_id, prefecture) pairs in the
// live table, ordered by prefecture_id ascending.
func (s *Store) ListPrefectures(ctx context.Context) ([]model.Prefecture, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT prefecture_id, prefecture FROM postal_codes ORDER BY prefecture_id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Prefecture
	for rows.Next() {
		var p model.Prefecture
		if err := rows.Scan(&p.ID, &p.Label); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CityEntry is one row of a ListCities result.
type CityEntry struct {
	CityID string `json:"city_id"`
	City   string `json:"city"`
}

// ListCities returns distinct (city_id, city) pairs for prefectureID,
// ordered by city_id ascending.
func (s *Store) ListCities(ctx context.Context, prefectureID int16) ([]CityEntry, error) {
	query := fmt.Sprintf(
		"SELECT DISTINCT city_id, city FROM postal_codes WHERE prefecture_id = %s ORDER BY city_id ASC",
		s.dialect.placeholder(1))
	rows, err := s.db.QueryContext(ctx, query, prefectureID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CityEntry
	for rows.Next() {
		var c CityEntry
		if err := rows.Scan(&c.CityID, &c.City); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SearchOnce runs one candidate term against prefecture/city/town,
// disjunctively, returning at most limit rows. useLike selects LIKE
// matching (prefix/partial modes); otherwise columns are matched by
// equality (exact mode).
func (s *Store) SearchOnce(ctx context.Context, term string, useLike bool, limit int64) ([]model.PostalRecord, error) {
	op := "="
	if useLike {
		op = "LIKE"
	}
	query := fmt.Sprintf(
		"SELECT %s FROM postal_codes WHERE prefecture %s %s OR city %s %s OR town %s %s LIMIT %s",
		selectColumns,
		op, s.dialect.placeholder(1),
		op, s.dialect.placeholder(1),
		op, s.dialect.placeholder(1),
		s.dialect.placeholder(2),
	)
	// Backends whose driver does not support re-referencing a bound
	// parameter by position (MySQL, SQLite) need the term bound three
	// times; rewrite the placeholders accordingly for those dialects.
	if s.dialect.name() != "postgres" {
		query = fmt.Sprintf(
			"SELECT %s FROM postal_codes WHERE prefecture %s %s OR city %s %s OR town %s %s LIMIT %s",
			selectColumns,
			op, s.dialect.placeholder(1),
			op, s.dialect.placeholder(2),
			op, s.dialect.placeholder(3),
			s.dialect.placeholder(4),
		)
		rows, err := s.db.QueryContext(ctx, query, term, term, term, limit)
		if err != nil {
			return nil, err
		}
		return scanPostalRecords(rows)
	}

	rows, err := s.db.QueryContext(ctx, query, term, limit)
	if err != nil {
		return nil, err
	}
	return scanPostalRecords(rows)
}
