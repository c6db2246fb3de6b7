package api

import "sync/atomic"

// Metrics holds the process-wide, relaxed-atomic request counters exposed at
// GET /metrics. Approximate accuracy under concurrent increments is
// acceptable per the resource model.
type Metrics struct {
	requestsTotal     int64
	errorsTotal       int64
	notFoundTotal     int64
	latencyTotalMicro int64
}

// NewMetrics returns a zeroed Metrics.
func NewMetrics() *Metrics { return &Metrics{} }

// Record updates the counters for one completed request: status determines
// whether it also counts as a 5xx error or a 404, and latencyMicros is added
// to the running total used to derive average latency.
func (m *Metrics) Record(status int, latencyMicros int64) {
	atomic.AddInt64(&m.requestsTotal, 1)
	atomic.AddInt64(&m.latencyTotalMicro, latencyMicros)
	if status >= 500 {
		atomic.AddInt64(&m.errorsTotal, 1)
	}
	if status == 404 {
		atomic.AddInt64(&m.notFoundTotal, 1)
	}
}

// Snapshot is the JSON shape served at GET /metrics.
type Snapshot struct {
	RequestsTotal     int64   `json:"requests_total"`
	ErrorsTotal       int64   `json:"errors_total"`
	NotFoundTotal     int64   `json:"not_found_total"`
	ErrorRate         float64 `json:"error_rate"`
	AverageLatencyMs  float64 `json:"average_latency_ms"`
}

// Snapshot reads the current counters and derives error_rate and
// average_latency_ms, both 0.0 when no requests have been recorded yet.
func (m *Metrics) Snapshot() Snapshot {
	requests := atomic.LoadInt64(&m.requestsTotal)
	errorsCount := atomic.LoadInt64(&m.errorsTotal)
	notFound := atomic.LoadInt64(&m.notFoundTotal)
	latencyMicro := atomic.LoadInt64(&m.latencyTotalMicro)

	var errorRate, avgLatencyMs float64
	if requests > 0 {
		errorRate = float64(errorsCount) / float64(requests)
		avgLatencyMs = (float64(latencyMicro) / float64(requests)) / 1000.0
	}

	return Snapshot{
		RequestsTotal:    requests,
		ErrorsTotal:      errorsCount,
		NotFoundTotal:    notFound,
		ErrorRate:        errorRate,
		AverageLatencyMs: avgLatencyMs,
	}
}
