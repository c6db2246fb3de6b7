// Package decode turns a Shift_JIS-encoded, headerless ken_all CSV feed into
// raw PostalRecords.
package decode

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/ignite/postal-converter-ja/internal/errs"
	"github.com/ignite/postal-converter-ja/internal/model"
)

// minColumns is the minimum column count a row must have: the feed's
// continuation flag lives at index 12.
const minColumns = 13

const (
	colCityID     = 0
	colZipCode    = 2
	colPrefecture = 6
	colCity       = 7
	colTown       = 8
	colContinued  = 12
)

// notOtherwiseListed is the sentinel town value meaning "not otherwise
// listed"; it is normalized to the empty string.
const notOtherwiseListed = "以下に掲載がない場合"

// PrefectureLookup resolves a prefecture label to its canonical ID, or 0 if
// unknown.
type PrefectureLookup interface {
	IDFor(label string) int16
}

// Record is one CSV row after field mapping and folding, paired with the
// source's continuation flag for C4 to consume.
type Record struct {
	model.PostalRecord
	IsContinuation bool
}

var foldTable = map[rune]string{
	'（': "(",
	'）': ")",
	'ー': "-",
	'、': ",",
}

func init() {
	for d := rune(0); d <= 9; d++ {
		foldTable['０'+d] = string(rune('0' + d))
	}
}

// fold applies the fixed full-width-to-ASCII translation table to s.
func fold(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if repl, ok := foldTable[r]; ok {
			b.WriteString(repl)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Records reads r as Shift_JIS bytes, decodes to Unicode, and parses the
// result as headerless CSV, calling emit once per row with the raw record
// and its continuation flag. A row shorter than minColumns is logged via
// onShortRow (if non-nil) and skipped rather than aborting the run, per the
// row-level DecodeError handling in the error design.
func Records(r io.Reader, prefs PrefectureLookup, emit func(Record) error, onShortRow func(rowNum int, err error)) error {
	decoded := transform.NewReader(r, japanese.ShiftJIS.NewDecoder())

	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading csv row %d: %w", rowNum, err)
		}
		rowNum++

		if len(row) < minColumns {
			if onShortRow != nil {
				onShortRow(rowNum, fmt.Errorf("%w: row %d has %d columns, want >= %d", errs.ErrDecodeRow, rowNum, len(row), minColumns))
			}
			continue
		}

		rec := buildRecord(row, prefs)
		if err := emit(rec); err != nil {
			return err
		}
	}
}

func buildRecord(row []string, prefs PrefectureLookup) Record {
	prefecture := fold(row[colPrefecture])
	city := fold(row[colCity])
	town := fold(row[colTown])
	if town == notOtherwiseListed {
		town = ""
	}

	return Record{
		PostalRecord: model.PostalRecord{
			ZipCode:      row[colZipCode],
			PrefectureID: prefs.IDFor(row[colPrefecture]),
			CityID:       row[colCityID],
			Prefecture:   prefecture,
			City:         city,
			Town:         town,
		},
		IsContinuation: row[colContinued] == "1",
	}
}
