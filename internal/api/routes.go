package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ignite/postal-converter-ja/internal/pkg/logger"
)

// NewRouter builds the full route tree: CORS, standard chi middleware, a
// per-request structured log line, the postal_codes read routes, and the
// liveness/readiness/metrics probes.
func NewRouter(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.metrics))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		MaxAge:           300,
	}))

	r.Get("/health", h.HandleHealth)
	r.Get("/ready", h.HandleReady)
	r.Get("/metrics", h.HandleMetrics)

	r.Route("/postal_codes", func(r chi.Router) {
		r.Get("/search", h.HandleSearch)
		r.Get("/prefectures", h.HandleListPrefectures)
		r.Get("/cities", h.HandleListCities)
		r.Get("/{zip_code}", h.HandleGetByZip)
	})

	return r
}

// statusRecorder captures the status code written by downstream handlers so
// the logging middleware and the metrics collector can observe it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// requestLogger emits one JSON log line per request (event, method, path,
// status, latency_ms) and records the same observation into metrics.
func requestLogger(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			elapsed := time.Since(start)
			metrics.Record(rec.status, elapsed.Microseconds())

			logger.Info("request completed",
				"event", "api_request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"latency_ms", float64(elapsed.Microseconds())/1000.0,
			)
		})
	}
}
