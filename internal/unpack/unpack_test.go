package unpack

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ignite/postal-converter-ja/internal/errs"
)

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating zip: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for name, contents := range files {
		entry, err := w.Create(name)
		if err != nil {
			t.Fatalf("creating zip entry: %v", err)
		}
		if _, err := entry.Write([]byte(contents)); err != nil {
			t.Fatalf("writing zip entry: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing zip writer: %v", err)
	}
}

func TestFirstEntryExtractsContents(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "feed.zip")
	writeZip(t, zipPath, map[string]string{"KEN_ALL.CSV": "row-data"})

	destPath := filepath.Join(dir, "out.csv")
	if err := FirstEntry(zipPath, destPath); err != nil {
		t.Fatalf("FirstEntry returned error: %v", err)
	}

	data, err := os.ReadFile(destPath)
	if err != nil {
		t.Fatalf("reading extracted file: %v", err)
	}
	if string(data) != "row-data" {
		t.Fatalf("extracted contents = %q, want %q", data, "row-data")
	}
}

func TestFirstEntryEmptyArchive(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "empty.zip")
	writeZip(t, zipPath, map[string]string{})

	destPath := filepath.Join(dir, "out.csv")
	err := FirstEntry(zipPath, destPath)
	if !errors.Is(err, errs.ErrEmptyArchive) {
		t.Fatalf("FirstEntry error = %v, want errs.ErrEmptyArchive", err)
	}
}
