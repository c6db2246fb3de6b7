// Package fetch streams the source feed ZIP to disk.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/ignite/postal-converter-ja/internal/errs"
)

// chunkSize bounds the size of each read/write round-trip while streaming
// the response body to disk.
const chunkSize = 64 * 1024

// ToFile streams the response body of a GET to url into destPath. Any
// non-2xx status is reported as errs.ErrFetchFailed without writing a
// partial file. A mid-stream read or write error removes the partial
// file and surfaces an error; retry is the caller's (Scheduler's) job, not
// this function's.
func ToFile(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: building request: %v", errs.ErrFetchFailed, err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: unexpected status %d", errs.ErrFetchFailed, resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("%w: creating destination file: %v", errs.ErrFetchFailed, err)
	}
	defer out.Close()

	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(out, resp.Body, buf); err != nil {
		_ = os.Remove(destPath)
		return fmt.Errorf("%w: mid-stream read error: %v", errs.ErrFetchFailed, err)
	}

	return nil
}
