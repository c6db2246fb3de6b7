package merge

import (
	"reflect"
	"testing"

	"github.com/ignite/postal-converter-ja/internal/decode"
	"github.com/ignite/postal-converter-ja/internal/model"
)

func rec(zip, cityID, town string, continuation bool) decode.Record {
	return decode.Record{
		PostalRecord: model.PostalRecord{
			ZipCode: zip,
			CityID:  cityID,
			Town:    town,
		},
		IsContinuation: continuation,
	}
}

func TestMergeJoinsContinuationRows(t *testing.T) {
	m := NewMerger()
	m.Push(rec("1000001", "13101", "丸の内一丁目", true))
	m.Push(rec("1000001", "13101", "（次のビルを除く）", true))
	got := m.Finish()

	want := []model.PostalRecord{{ZipCode: "1000001", CityID: "13101", Town: "丸の内一丁目（次のビルを除く）"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestMergeRequiresSymmetricFlag(t *testing.T) {
	m := NewMerger()
	m.Push(rec("1000001", "13101", "A", true))
	m.Push(rec("1000001", "13101", "B", false))
	got := m.Finish()

	want := []model.PostalRecord{
		{ZipCode: "1000001", CityID: "13101", Town: "A"},
		{ZipCode: "1000001", CityID: "13101", Town: "B"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v (asymmetric flags must not merge)", got, want)
	}
}

func TestMergeDifferentZipDoesNotMerge(t *testing.T) {
	m := NewMerger()
	m.Push(rec("1000001", "13101", "A", true))
	m.Push(rec("1000002", "13101", "B", true))
	got := m.Finish()

	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
}

func TestMergeDeduplicatesOnPrimaryKey(t *testing.T) {
	m := NewMerger()
	m.Push(rec("1000001", "13101", "A", false))
	m.Push(rec("1000001", "13101", "A", false))
	got := m.Finish()

	if len(got) != 1 {
		t.Fatalf("got %d records, want 1 after dedup", len(got))
	}
}

func TestMergeFlushesTrailingPending(t *testing.T) {
	m := NewMerger()
	m.Push(rec("1000001", "13101", "A", true))
	got := m.Finish()

	if len(got) != 1 || got[0].Town != "A" {
		t.Fatalf("got %+v, want a single flushed record with Town=A", got)
	}
}
