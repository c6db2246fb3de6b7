package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ignite/postal-converter-ja/internal/audit"
	"github.com/ignite/postal-converter-ja/internal/cache"
	"github.com/ignite/postal-converter-ja/internal/config"
	"github.com/ignite/postal-converter-ja/internal/decode"
	"github.com/ignite/postal-converter-ja/internal/errs"
	"github.com/ignite/postal-converter-ja/internal/fetch"
	"github.com/ignite/postal-converter-ja/internal/merge"
	"github.com/ignite/postal-converter-ja/internal/model"
	"github.com/ignite/postal-converter-ja/internal/pkg/logger"
	"github.com/ignite/postal-converter-ja/internal/prefecture"
	"github.com/ignite/postal-converter-ja/internal/scheduler"
	"github.com/ignite/postal-converter-ja/internal/store"
	"github.com/ignite/postal-converter-ja/internal/unpack"
	"github.com/ignite/postal-converter-ja/internal/writer"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		logger.Error("crawler: failed to load configuration", "error", err.Error())
		os.Exit(1)
	}
	if cfg.Crawler.ZipCodeURL == "" {
		logger.Error("crawler: ZIP_CODE_URL is required")
		os.Exit(1)
	}

	ctx := context.Background()

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		logger.Error("crawler: failed to open store", "error", err.Error())
		os.Exit(1)
	}
	defer st.Close()

	var c *cache.Cache
	if cfg.Cache.Enabled() {
		c, err = cache.NewFromURL(cfg.Cache.URL)
		if err != nil {
			logger.Error("crawler: failed to configure cache", "error", err.Error())
			os.Exit(1)
		}
	} else {
		c = cache.New(nil)
	}

	if err := os.MkdirAll(cfg.Crawler.TempDir, 0o755); err != nil {
		logger.Error("crawler: failed to create temp dir", "error", err.Error())
		os.Exit(1)
	}

	cycle := func(ctx context.Context, batchTimestamp time.Time) error {
		return runCycle(ctx, cfg, st, c, batchTimestamp)
	}

	s := scheduler.New(cfg.Crawler.Interval, cfg.Crawler.RunOnce, cycle)
	if err := s.Run(ctx); err != nil {
		logger.Error("crawler: final cycle failed", "error", err.Error())
		os.Exit(1)
	}
}

// runCycle executes one full ingestion cycle: fetch, unpack, decode, merge,
// write, audit, and cache invalidation.
func runCycle(ctx context.Context, cfg *config.Config, st *store.Store, c *cache.Cache, batchTimestamp time.Time) error {
	runStartedAt := time.Now()
	dataVersion := model.NewDataVersion(runStartedAt)

	summary := audit.RunSummary{
		DataVersion:    dataVersion,
		DatabaseType:   string(cfg.Store.Type),
		SourceURL:      cfg.Crawler.ZipCodeURL,
		RunStartedAt:   runStartedAt,
		BatchTimestamp: batchTimestamp,
	}

	records, err := fetchAndDecode(ctx, cfg)
	if err != nil {
		summary.RunFinishedAt = time.Now()
		if auditErr := audit.RecordFailure(ctx, st, summary, err); auditErr != nil {
			logger.Error("crawler: failed to record failure audit row", "error", auditErr.Error())
		}
		return fmt.Errorf("crawler: fetch/decode stage: %w", err)
	}
	summary.RecordsInFeed = int64(len(records))

	result, err := writer.Write(ctx, st, st.UpsertChunk, records, batchTimestamp)
	if err != nil {
		summary.RunFinishedAt = time.Now()
		if auditErr := audit.RecordFailure(ctx, st, summary, err); auditErr != nil {
			logger.Error("crawler: failed to record failure audit row", "error", auditErr.Error())
		}
		return fmt.Errorf("crawler: write stage: %w", err)
	}
	summary.DeletedCount = result.DeletedCount
	summary.RunFinishedAt = time.Now()

	if err := audit.Finalize(ctx, st, summary); err != nil {
		return fmt.Errorf("crawler: finalize stage: %w", err)
	}

	c.InvalidateAll(ctx)

	logger.Info("crawler: cycle succeeded",
		"data_version", dataVersion,
		"records_in_feed", summary.RecordsInFeed,
		"deleted_count", summary.DeletedCount,
	)
	return nil
}

// fetchAndDecode downloads the feed archive, extracts its single CSV entry,
// decodes every row, and merges continuation rows into canonical records.
func fetchAndDecode(ctx context.Context, cfg *config.Config) ([]model.PostalRecord, error) {
	zipPath := filepath.Join(cfg.Crawler.TempDir, "ken_all.zip")
	csvPath := filepath.Join(cfg.Crawler.TempDir, "ken_all.csv")
	defer os.Remove(zipPath)
	defer os.Remove(csvPath)

	if err := fetch.ToFile(ctx, cfg.Crawler.ZipCodeURL, zipPath); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrFetchFailed, err)
	}

	if err := unpack.FirstEntry(zipPath, csvPath); err != nil {
		return nil, err
	}

	f, err := os.Open(csvPath)
	if err != nil {
		return nil, fmt.Errorf("crawler: opening extracted csv: %w", err)
	}
	defer f.Close()

	m := merge.NewMerger()
	onShortRow := func(rowNum int, err error) {
		logger.Warn("crawler: skipping short row", "row", rowNum, "error", err.Error())
	}
	if err := decode.Records(f, prefecture.Default(), func(r decode.Record) error {
		m.Push(r)
		return nil
	}, onShortRow); err != nil {
		return nil, fmt.Errorf("crawler: decoding feed: %w", err)
	}

	return m.Finish(), nil
}
