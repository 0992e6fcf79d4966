// Package metrics records address validation, handle resolution and
// trade-flow sequencing metrics. Collectors live on a private Prometheus
// registry; atomic counters back the Snapshot used by the CLI.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tollgate"

// Handle lookup results.
const (
	LookupFound    = "found"
	LookupNotFound = "not_found"
	LookupError    = "error"
)

// Metrics holds Prometheus collectors plus atomic counters for quick
// snapshots. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	validations        *prometheus.CounterVec
	validationDuration *prometheus.HistogramVec
	handleLookups      *prometheus.CounterVec
	handleDuration     prometheus.Histogram
	cacheRequests      *prometheus.CounterVec
	staleDiscards      *prometheus.CounterVec
	recoveredPanics    prometheus.Counter

	validationsTotal atomic.Int64
	validTotal       atomic.Int64
	lookupsTotal     atomic.Int64
	lookupErrors     atomic.Int64
	cacheHits        atomic.Int64
	cacheMisses      atomic.Int64
	staleTotal       atomic.Int64
	panicsTotal      atomic.Int64
}

// New creates a Metrics with its collectors registered on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		validations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gate",
			Name:      "validations_total",
			Help:      "Address validations by chain and outcome",
		}, []string{"chain", "outcome"}),
		validationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gate",
			Name:      "validation_duration_seconds",
			Help:      "Address validation duration",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"chain"}),
		handleLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "handle",
			Name:      "lookups_total",
			Help:      "Upstream handle lookups by result",
		}, []string{"result"}),
		handleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "handle",
			Name:      "lookup_duration_seconds",
			Help:      "Upstream handle lookup duration including retries",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		cacheRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "handle",
			Name:      "cache_requests_total",
			Help:      "Handle cache requests by result",
		}, []string{"result"}),
		staleDiscards: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tradeflow",
			Name:      "stale_results_discarded_total",
			Help:      "Validation results dropped because a newer request or reset superseded them",
		}, []string{"reason"}),
		recoveredPanics: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gate",
			Name:      "recovered_panics_total",
			Help:      "Interpreter panics converted to malformed-address outcomes",
		}),
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// WriteTextfile writes every collector to path in the Prometheus text
// exposition format, for node_exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}

// RecordValidation records one gate validation.
func (m *Metrics) RecordValidation(chain, outcome string, valid bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.validations.WithLabelValues(chain, outcome).Inc()
	m.validationDuration.WithLabelValues(chain).Observe(duration.Seconds())
	m.validationsTotal.Add(1)
	if valid {
		m.validTotal.Add(1)
	}
}

// RecordLookup records one upstream handle lookup.
func (m *Metrics) RecordLookup(result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.handleLookups.WithLabelValues(result).Inc()
	m.handleDuration.Observe(duration.Seconds())
	m.lookupsTotal.Add(1)
	if result == LookupError {
		m.lookupErrors.Add(1)
	}
}

// RecordCacheHit records a handle cache hit.
func (m *Metrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.cacheRequests.WithLabelValues("hit").Inc()
	m.cacheHits.Add(1)
}

// RecordCacheMiss records a handle cache miss.
func (m *Metrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.cacheRequests.WithLabelValues("miss").Inc()
	m.cacheMisses.Add(1)
}

// RecordStaleDiscard records a validation result that was not applied.
// reason is "superseded" or "reset".
func (m *Metrics) RecordStaleDiscard(reason string) {
	if m == nil {
		return
	}
	m.staleDiscards.WithLabelValues(reason).Inc()
	m.staleTotal.Add(1)
}

// RecordRecoveredPanic records a panic caught at the interpreter boundary.
func (m *Metrics) RecordRecoveredPanic() {
	if m == nil {
		return
	}
	m.recoveredPanics.Inc()
	m.panicsTotal.Add(1)
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Validations     int64 `json:"validations"`
	Valid           int64 `json:"valid"`
	HandleLookups   int64 `json:"handle_lookups"`
	LookupErrors    int64 `json:"lookup_errors"`
	CacheHits       int64 `json:"cache_hits"`
	CacheMisses     int64 `json:"cache_misses"`
	StaleDiscards   int64 `json:"stale_discards"`
	RecoveredPanics int64 `json:"recovered_panics"`
}

// Snapshot returns a point-in-time copy of all counters.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		Validations:     m.validationsTotal.Load(),
		Valid:           m.validTotal.Load(),
		HandleLookups:   m.lookupsTotal.Load(),
		LookupErrors:    m.lookupErrors.Load(),
		CacheHits:       m.cacheHits.Load(),
		CacheMisses:     m.cacheMisses.Load(),
		StaleDiscards:   m.staleTotal.Load(),
		RecoveredPanics: m.panicsTotal.Load(),
	}
}

// CacheHitRate returns the cache hit rate as a percentage (0-100).
// Returns 0 if no cache operations have occurred.
func (s Snapshot) CacheHitRate() float64 {
	total := s.CacheHits + s.CacheMisses
	if total == 0 {
		return 0
	}
	return float64(s.CacheHits) / float64(total) * 100
}
