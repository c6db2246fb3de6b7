// Package query implements the Query Engine (C10), fronted by the
// read-through cache (C11): GetByZip, ListPrefectures, ListCities, and
// address Search with mode selection and a multi-candidate accumulator.
package query

import (
	"context"
	"fmt"

	"github.com/ignite/postal-converter-ja/internal/errs"
	"github.com/ignite/postal-converter-ja/internal/model"
	"github.com/ignite/postal-converter-ja/internal/search"
	"github.com/ignite/postal-converter-ja/internal/store"
)

// defaultLimit and the clamp bounds match the Search contract.
const (
	defaultLimit = 50
	minLimit     = 1
	maxLimit     = 200
)

// defaultCacheTTLSeconds is used when the caller doesn't override it.
const defaultCacheTTLSeconds = 300

// Store is the subset of the store's capability set the query engine
// reads from.
type Store interface {
	GetByZip(ctx context.Context, zip string) ([]model.PostalRecord, error)
	ListPrefectures(ctx context.Context) ([]model.Prefecture, error)
	ListCities(ctx context.Context, prefectureID int16) ([]store.CityEntry, error)
	SearchOnce(ctx context.Context, term string, useLike bool, limit int64) ([]model.PostalRecord, error)
}

// Cache is the subset of the cache package's capability set the query
// engine fronts its reads with.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	SetWithTTL(ctx context.Context, key string, value interface{}, ttlSeconds int64)
}

// Engine answers read queries, consulting the cache before the store and
// populating the cache on a miss.
type Engine struct {
	store      Store
	cache      Cache
	ttlSeconds int64
}

// New returns an Engine. ttlSeconds of 0 uses the 300s default.
func New(st Store, c Cache, ttlSeconds int64) *Engine {
	if ttlSeconds <= 0 {
		ttlSeconds = defaultCacheTTLSeconds
	}
	return &Engine{store: st, cache: c, ttlSeconds: ttlSeconds}
}

// GetByZip returns every record with an exact zip_code match, or
// errs.ErrNotFound if none exist.
func (e *Engine) GetByZip(ctx context.Context, zip string) ([]model.PostalRecord, error) {
	key := fmt.Sprintf("postal:zip:%s", zip)

	var cached []model.PostalRecord
	if e.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	records, err := e.store.GetByZip(ctx, zip)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStore, err)
	}
	if len(records) == 0 {
		return nil, errs.ErrNotFound
	}

	e.cache.SetWithTTL(ctx, key, records, e.ttlSeconds)
	return records, nil
}

// ListPrefectures returns every distinct prefecture present in the live
// table, ordered by prefecture_id ascending.
func (e *Engine) ListPrefectures(ctx context.Context) ([]model.Prefecture, error) {
	const key = "postal:prefectures"

	var cached []model.Prefecture
	if e.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	prefs, err := e.store.ListPrefectures(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStore, err)
	}

	e.cache.SetWithTTL(ctx, key, prefs, e.ttlSeconds)
	return prefs, nil
}

// ListCities returns every distinct city within prefectureID, ordered by
// city_id ascending.
func (e *Engine) ListCities(ctx context.Context, prefectureID int16) ([]store.CityEntry, error) {
	key := fmt.Sprintf("postal:cities:%d", prefectureID)

	var cached []store.CityEntry
	if e.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	cities, err := e.store.ListCities(ctx, prefectureID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStore, err)
	}

	e.cache.SetWithTTL(ctx, key, cities, e.ttlSeconds)
	return cities, nil
}

// ClampLimit applies the Search contract's [1,200] clamp, defaulting to 50
// when limit is 0 (unset).
func ClampLimit(limit int) int64 {
	if limit == 0 {
		limit = defaultLimit
	}
	if limit < minLimit {
		limit = minLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return int64(limit)
}

// Search normalizes address, builds its candidate set, and queries the
// store with each candidate's term in order, accumulating unique results
// (equality on all six PostalRecord fields) up to limit.
func (e *Engine) Search(ctx context.Context, address string, limit int, mode search.Mode) ([]model.PostalRecord, error) {
	normalized := search.Normalize(address)
	if normalized == "" {
		return []model.PostalRecord{}, nil
	}

	clamped := ClampLimit(limit)
	key := fmt.Sprintf("postal:search:%s:%s:%d", mode, normalized, clamped)

	var cached []model.PostalRecord
	if e.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	candidates := search.BuildCandidates(normalized)
	useLike := mode != search.ModeExact

	result := make([]model.PostalRecord, 0, clamped)
	seen := make(map[model.PostalRecord]struct{})

	for _, candidate := range candidates {
		if int64(len(result)) >= clamped {
			break
		}
		term := search.BuildTerm(mode, candidate)
		remaining := clamped - int64(len(result))

		chunk, err := e.store.SearchOnce(ctx, term, useLike, remaining)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrStore, err)
		}

		for _, rec := range chunk {
			if _, dup := seen[rec]; dup {
				continue
			}
			seen[rec] = struct{}{}
			result = append(result, rec)
			if int64(len(result)) >= clamped {
				break
			}
		}
	}

	e.cache.SetWithTTL(ctx, key, result, e.ttlSeconds)
	return result, nil
}
