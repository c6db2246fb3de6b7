package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ignite/postal-converter-ja/internal/errs"
)

func TestToFileWritesBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("zip-bytes"))
	}))
	defer ts.Close()

	dest := filepath.Join(t.TempDir(), "feed.zip")
	if err := ToFile(context.Background(), ts.URL, dest); err != nil {
		t.Fatalf("ToFile returned error: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading dest file: %v", err)
	}
	if string(data) != "zip-bytes" {
		t.Fatalf("dest contents = %q, want %q", data, "zip-bytes")
	}
}

func TestToFileNonSuccessStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	dest := filepath.Join(t.TempDir(), "feed.zip")
	err := ToFile(context.Background(), ts.URL, dest)
	if err == nil {
		t.Fatal("expected an error for a 404 response")
	}
	if !errors.Is(err, errs.ErrFetchFailed) {
		t.Fatalf("error %v does not wrap errs.ErrFetchFailed", err)
	}
	if _, statErr := os.Stat(dest); statErr == nil {
		t.Fatal("destination file should not have been created on non-2xx status")
	}
}
