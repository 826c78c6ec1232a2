// Package metrics exposes Prometheus collectors for cache behaviour and
// canonicalization runs. Batch runs have no scrape endpoint, so collectors are
// exported through the node_exporter textfile format.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "xrefcanon"

// Metrics groups every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	cacheWrites      *prometheus.CounterVec
	headerMismatches *prometheus.CounterVec
	producerFailures *prometheus.CounterVec

	edgesApplied *prometheus.CounterVec
	edgesSkipped *prometheus.CounterVec
	identifiers  prometheus.Gauge
	classes      prometheus.Gauge
	buildLatency prometheus.Histogram

	dumpRows *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "hits_total",
			Help: "Artifacts served from disk without calling the producer.",
		}, []string{"kind"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "misses_total",
			Help: "Artifacts that had to be produced.",
		}, []string{"kind", "reason"}),
		cacheWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "writes_total",
			Help: "Artifacts atomically written to disk.",
		}, []string{"kind"}),
		headerMismatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "header_mismatches_total",
			Help: "Artifacts discarded because their header did not match.",
		}, []string{"kind"}),
		producerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "producer_failures_total",
			Help: "Producer calls that returned an error.",
		}, []string{"kind"}),
		edgesApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "canon", Name: "edges_applied_total",
			Help: "Edges unioned into the forest.",
		}, []string{"type"}),
		edgesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "canon", Name: "edges_skipped_total",
			Help: "Edges dropped for falling below the trust threshold.",
		}, []string{"type"}),
		identifiers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "canon", Name: "identifiers",
			Help: "Identifiers observed by the last canonicalization.",
		}),
		classes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "canon", Name: "classes",
			Help: "Equivalence classes produced by the last canonicalization.",
		}),
		buildLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "canon", Name: "build_seconds",
			Help:    "Wall time of forest construction and merge.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		dumpRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "dump", Name: "rows_total",
			Help: "Rows written per dump.",
		}, []string{"dump"}),
	}
	reg.MustRegister(
		m.cacheHits, m.cacheMisses, m.cacheWrites, m.headerMismatches, m.producerFailures,
		m.edgesApplied, m.edgesSkipped, m.identifiers, m.classes, m.buildLatency,
		m.dumpRows,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry returns the underlying gatherer.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) CacheHit(kind string) {
	if m != nil {
		m.cacheHits.WithLabelValues(kind).Inc()
	}
}

// CacheMiss records a miss; reason is one of absent, forced, mismatch, unreadable.
func (m *Metrics) CacheMiss(kind, reason string) {
	if m != nil {
		m.cacheMisses.WithLabelValues(kind, reason).Inc()
	}
}

func (m *Metrics) CacheWrite(kind string) {
	if m != nil {
		m.cacheWrites.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) HeaderMismatch(kind string) {
	if m != nil {
		m.headerMismatches.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) ProducerFailure(kind string) {
	if m != nil {
		m.producerFailures.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) EdgesApplied(edgeType string, n int) {
	if m != nil && n > 0 {
		m.edgesApplied.WithLabelValues(edgeType).Add(float64(n))
	}
}

func (m *Metrics) EdgesSkipped(edgeType string, n int) {
	if m != nil && n > 0 {
		m.edgesSkipped.WithLabelValues(edgeType).Add(float64(n))
	}
}

// Canonicalized records the outcome of a build.
func (m *Metrics) Canonicalized(identifiers, classes int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.identifiers.Set(float64(identifiers))
	m.classes.Set(float64(classes))
	m.buildLatency.Observe(elapsed.Seconds())
}

func (m *Metrics) DumpRows(dump string, n int) {
	if m != nil && n > 0 {
		m.dumpRows.WithLabelValues(dump).Add(float64(n))
	}
}

// WriteTextfile exports the current values in the node_exporter textfile
// format. An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
