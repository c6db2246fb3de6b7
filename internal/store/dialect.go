// Package store implements the relational-store capability set used by the
// ingestion writer and the query engine: parameterized upserts, a sweep
// delete, snapshot/rollback support, and read queries, over whichever of
// Postgres, MySQL, or SQLite the deployment is configured for.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/ignite/postal-converter-ja/internal/config"
)

// dialect captures the handful of ways the three supported backends differ:
// placeholder syntax, the upsert's conflict clause, and how a deadlock (or,
// for SQLite, the closest analogue — a busy/locked database) is recognized
// in a returned error.
type dialect interface {
	name() string
	placeholder(pos int) string
	upsertConflictClause() string
	isDeadlock(err error) bool
	schema() string
}

func dialectFor(dbType config.DatabaseType) (dialect, error) {
	switch dbType {
	case config.DatabasePostgres:
		return postgresDialect{}, nil
	case config.DatabaseMySQL:
		return mysqlDialect{}, nil
	case config.DatabaseSQLite:
		return sqliteDialect{}, nil
	default:
		return nil, fmt.Errorf("store: unknown database type %q", dbType)
	}
}

func driverNameFor(dbType config.DatabaseType) (string, error) {
	switch dbType {
	case config.DatabasePostgres:
		return "postgres", nil
	case config.DatabaseMySQL:
		return "mysql", nil
	case config.DatabaseSQLite:
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("store: unknown database type %q", dbType)
	}
}

func dsnFor(cfg config.StoreConfig) (string, error) {
	switch cfg.Type {
	case config.DatabasePostgres:
		return cfg.PostgresURL, nil
	case config.DatabaseMySQL:
		return cfg.MySQLURL, nil
	case config.DatabaseSQLite:
		return cfg.SQLitePath, nil
	default:
		return "", fmt.Errorf("store: unknown database type %q", cfg.Type)
	}
}

// --- Postgres ---------------------------------------------------------

type postgresDialect struct{}

func (postgresDialect) name() string { return string(config.DatabasePostgres) }

func (postgresDialect) placeholder(pos int) string { return fmt.Sprintf("$%d", pos) }

func (postgresDialect) upsertConflictClause() string {
	return `ON CONFLICT (zip_code, prefecture_id, city, town) DO UPDATE SET
		prefecture = EXCLUDED.prefecture,
		town = EXCLUDED.town,
		updated_at = EXCLUDED.updated_at`
}

// pgDeadlockCode is postgres error code 40P01, deadlock_detected.
const pgDeadlockCode = "40P01"

func (postgresDialect) isDeadlock(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgDeadlockCode
	}
	return false
}

func (postgresDialect) schema() string { return postgresSchema }

// --- MySQL --------------------------------------------------------------

type mysqlDialect struct{}

func (mysqlDialect) name() string { return string(config.DatabaseMySQL) }

func (mysqlDialect) placeholder(int) string { return "?" }

func (mysqlDialect) upsertConflictClause() string {
	return `ON DUPLICATE KEY UPDATE
		prefecture = VALUES(prefecture),
		town = VALUES(town),
		updated_at = VALUES(updated_at)`
}

// mysqlDeadlockNumber is MySQL error number 1213, ER_LOCK_DEADLOCK.
const mysqlDeadlockNumber = 1213

func (mysqlDialect) isDeadlock(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlDeadlockNumber
	}
	return false
}

func (mysqlDialect) schema() string { return mysqlSchema }

// --- SQLite ---------------------------------------------------------------

type sqliteDialect struct{}

func (sqliteDialect) name() string { return string(config.DatabaseSQLite) }

func (sqliteDialect) placeholder(int) string { return "?" }

func (sqliteDialect) upsertConflictClause() string {
	return `ON CONFLICT(zip_code, prefecture_id, city, town) DO UPDATE SET
		prefecture = excluded.prefecture,
		town = excluded.town,
		updated_at = excluded.updated_at`
}

// SQLite has no multi-writer deadlock; a write that collides with another
// in-flight writer surfaces as SQLITE_BUSY, which the writer retries the
// same way it retries a genuine deadlock on the other two backends.
func (sqliteDialect) isDeadlock(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}

func (sqliteDialect) schema() string { return sqliteSchema }

// Open opens a *sql.DB for the configured backend and ensures the schema
// exists.
func Open(ctx context.Context, cfg config.StoreConfig) (*Store, error) {
	driverName, err := driverNameFor(cfg.Type)
	if err != nil {
		return nil, err
	}
	dsn, err := dsnFor(cfg)
	if err != nil {
		return nil, err
	}
	d, err := dialectFor(cfg.Type)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", cfg.Type, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: pinging %s: %w", cfg.Type, err)
	}

	s := &Store{db: db, dialect: d}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}
