// Package api implements the read-only HTTP query surface (C12): the
// postal_codes routes backed by the query engine, liveness/readiness probes,
// and the in-memory metrics snapshot.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/postal-converter-ja/internal/cache"
	"github.com/ignite/postal-converter-ja/internal/errs"
	"github.com/ignite/postal-converter-ja/internal/model"
	"github.com/ignite/postal-converter-ja/internal/pkg/logger"
	"github.com/ignite/postal-converter-ja/internal/search"
	"github.com/ignite/postal-converter-ja/internal/store"
)

// Engine is the subset of the query engine the API depends on.
type Engine interface {
	GetByZip(ctx context.Context, zip string) ([]model.PostalRecord, error)
	ListPrefectures(ctx context.Context) ([]model.Prefecture, error)
	ListCities(ctx context.Context, prefectureID int16) ([]store.CityEntry, error)
	Search(ctx context.Context, address string, limit int, mode search.Mode) ([]model.PostalRecord, error)
}

// Pinger is the subset of the store the readiness probe depends on.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CacheProbe is the subset of the cache the readiness probe depends on.
type CacheProbe interface {
	Enabled() bool
	Ping(ctx context.Context) error
}

// Handlers holds every dependency the HTTP handlers need.
type Handlers struct {
	engine            Engine
	store             Pinger
	cache             CacheProbe
	readyRequireCache bool
	metrics           *Metrics
}

// NewHandlers wires the query engine, the store (for readiness pings), the
// cache (for readiness pings), and the metrics collector into one Handlers.
func NewHandlers(engine Engine, st Pinger, c CacheProbe, readyRequireCache bool, metrics *Metrics) *Handlers {
	return &Handlers{engine: engine, store: st, cache: c, readyRequireCache: readyRequireCache, metrics: metrics}
}

// HandleGetByZip serves GET /postal_codes/{zip_code}.
func (h *Handlers) HandleGetByZip(w http.ResponseWriter, r *http.Request) {
	zip := chi.URLParam(r, "zip_code")

	records, err := h.engine.GetByZip(r.Context(), zip)
	if errors.Is(err, errs.ErrNotFound) {
		respondError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		logger.Error("api: GetByZip failed", "error", err.Error(), "zip_code", zip)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	respondJSON(w, http.StatusOK, records)
}

// HandleSearch serves GET /postal_codes/search?address=&limit=&mode=.
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	address := q.Get("address")
	mode := search.ParseMode(q.Get("mode"))

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	records, err := h.engine.Search(r.Context(), address, limit, mode)
	if err != nil {
		logger.Error("api: Search failed", "error", err.Error(), "address", address)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	respondJSON(w, http.StatusOK, records)
}

// HandleListPrefectures serves GET /postal_codes/prefectures.
func (h *Handlers) HandleListPrefectures(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.engine.ListPrefectures(r.Context())
	if err != nil {
		logger.Error("api: ListPrefectures failed", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	respondJSON(w, http.StatusOK, prefs)
}

// HandleListCities serves GET /postal_codes/cities?prefecture_id=.
func (h *Handlers) HandleListCities(w http.ResponseWriter, r *http.Request) {
	prefectureID, err := strconv.Atoi(r.URL.Query().Get("prefecture_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "prefecture_id is required and must be an integer")
		return
	}

	cities, err := h.engine.ListCities(r.Context(), int16(prefectureID))
	if err != nil {
		logger.Error("api: ListCities failed", "error", err.Error(), "prefecture_id", prefectureID)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	respondJSON(w, http.StatusOK, cities)
}

// HandleHealth serves the static liveness probe GET /health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleReady serves GET /ready: SELECT-1-equivalent store ping plus cache
// state resolution via the disabled/ok/error truth table.
func (h *Handlers) HandleReady(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "database not ready")
		return
	}

	cacheEnabled := h.cache != nil && h.cache.Enabled()
	cachePingOK := cacheEnabled && h.cache.Ping(r.Context()) == nil
	cacheState, ready := cache.ResolveState(cacheEnabled, cachePingOK, h.readyRequireCache)

	if !ready {
		respondError(w, http.StatusServiceUnavailable, "cache not ready")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"database": "ok",
		"cache":    cacheState,
	})
}

// HandleMetrics serves GET /metrics.
func (h *Handlers) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.metrics.Snapshot())
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
