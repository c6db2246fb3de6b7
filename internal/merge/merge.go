// Package merge joins continuation rows emitted by the decoder into single
// canonical PostalRecords and deduplicates on primary key.
package merge

import (
	"github.com/ignite/postal-converter-ja/internal/decode"
	"github.com/ignite/postal-converter-ja/internal/model"
)

// Merger accumulates a single pending record and merges adjacent
// continuation rows into it. The merge condition is strictly symmetric on
// the source continuation flag: both the pending record and the incoming
// record must carry it, plus matching zip_code and city_id. Asymmetric
// rules (considering only one side's flag) produced false merges and were
// rejected.
type Merger struct {
	pending    decode.Record
	hasPending bool
	out        []model.PostalRecord
	seen       map[[4]string]struct{}
}

// NewMerger returns an empty Merger.
func NewMerger() *Merger {
	return &Merger{seen: make(map[[4]string]struct{})}
}

// Push feeds one decoded record into the merger, in source order.
func (m *Merger) Push(r decode.Record) {
	if m.hasPending &&
		m.pending.IsContinuation &&
		r.IsContinuation &&
		m.pending.ZipCode == r.ZipCode &&
		m.pending.CityID == r.CityID {
		m.pending.Town += r.Town
		return
	}

	if m.hasPending {
		m.emit(m.pending.PostalRecord)
	}
	m.pending = r
	m.hasPending = true
}

// Finish flushes any remaining pending record and returns the deduplicated,
// merged sequence. The Merger must not be reused after calling Finish.
func (m *Merger) Finish() []model.PostalRecord {
	if m.hasPending {
		m.emit(m.pending.PostalRecord)
		m.hasPending = false
	}
	return m.out
}

// emit appends rec to the output unless its primary key has already been
// seen; the conflict-aware upsert downstream cannot process two rows
// sharing a key within one statement.
func (m *Merger) emit(rec model.PostalRecord) {
	key := rec.Key()
	if _, dup := m.seen[key]; dup {
		return
	}
	m.seen[key] = struct{}{}
	m.out = append(m.out, rec)
}
