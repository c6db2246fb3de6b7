// Package unpack extracts the single feed entry from the downloaded ZIP.
package unpack

import (
	"archive/zip"
	"fmt"
	"io"
	"os"

	"github.com/ignite/postal-converter-ja/internal/errs"
)

// FirstEntry opens the ZIP at srcPath, requires at least one entry, and
// extracts the first entry to destPath. Returns errs.ErrEmptyArchive if the
// archive has no entries.
func FirstEntry(srcPath, destPath string) error {
	r, err := zip.OpenReader(srcPath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer r.Close()

	if len(r.File) == 0 {
		return errs.ErrEmptyArchive
	}

	entry := r.File[0]
	rc, err := entry.Open()
	if err != nil {
		return fmt.Errorf("opening archive entry %q: %w", entry.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating destination file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("extracting archive entry %q: %w", entry.Name, err)
	}

	return nil
}
