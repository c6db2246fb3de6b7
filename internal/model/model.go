// Package model defines the canonical postal-code record types shared by
// the crawler and the query engine.
package model

import (
	"strconv"
	"time"
)

// PostalRecord is the canonical representation of one postal-code row.
// Primary key: (ZipCode, PrefectureID, City, Town).
type PostalRecord struct {
	ZipCode      string `json:"zip_code"`
	PrefectureID int16  `json:"prefecture_id"`
	CityID       string `json:"city_id"`
	Prefecture   string `json:"prefecture"`
	City         string `json:"city"`
	Town         string `json:"town"`
}

// Equal reports whether two records are equal on all six PostalRecord fields.
func (r PostalRecord) Equal(o PostalRecord) bool {
	return r.ZipCode == o.ZipCode &&
		r.PrefectureID == o.PrefectureID &&
		r.CityID == o.CityID &&
		r.Prefecture == o.Prefecture &&
		r.City == o.City &&
		r.Town == o.Town
}

// Key returns the primary-key tuple used for dedup and upsert conflict
// targets: (zip_code, prefecture_id, city, town).
func (r PostalRecord) Key() [4]string {
	return [4]string{r.ZipCode, strconv.Itoa(int(r.PrefectureID)), r.City, r.Town}
}

// StoredRecord is a PostalRecord plus the storage-layer timestamps that the
// versioned writer stamps on every touched row.
type StoredRecord struct {
	PostalRecord
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsNewlyInserted reports whether this row was inserted (rather than
// updated) in its most recent write, per the spec invariant
// updated_at == created_at implies insert.
func (s StoredRecord) IsNewlyInserted() bool {
	return s.CreatedAt.Equal(s.UpdatedAt)
}

// SnapshotRecord is an immutable point-in-time copy of a live row, keyed by
// data version. Primary key: (DataVersion, ZipCode, PrefectureID, City, Town).
type SnapshotRecord struct {
	DataVersion        string
	PostalRecord       PostalRecord
	CreatedAt          time.Time
	UpdatedAt          time.Time
	SnapshotCreatedAt  time.Time
}

// AuditStatus enumerates the outcome of an ingestion run.
type AuditStatus string

const (
	AuditSuccess  AuditStatus = "success"
	AuditFailed   AuditStatus = "failed"
	AuditRollback AuditStatus = "rollback"
)

// AuditRecord is one row per ingestion run.
type AuditRecord struct {
	DataVersion    string
	DatabaseType   string
	SourceURL      string
	RunStartedAt   time.Time
	RunFinishedAt  time.Time
	BatchTimestamp time.Time
	RecordsInFeed  int64
	InsertedCount  int64
	UpdatedCount   int64
	DeletedCount   int64
	TotalCount     int64
	Status         AuditStatus
	ErrorMessage   string
}

// Prefecture is one row of the static prefecture lookup table.
type Prefecture struct {
	ID    int16  `json:"prefecture_id"`
	Label string `json:"prefecture"`
}
