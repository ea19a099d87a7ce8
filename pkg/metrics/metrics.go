// Package metrics instruments the index engine with Prometheus counters
// and histograms. A *Metrics is optional: the engine accepts a nil
// *Metrics and every method here is nil-safe, so instrumentation never
// forces a caller through an HTTP server or a registry just to run the
// tree.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusHit  = "hit"
	statusMiss = "miss"
)

// Metrics holds the Prometheus collectors for one tree handle.
type Metrics struct {
	opsTotal     *prometheus.CounterVec
	opDuration   *prometheus.HistogramVec
	splitsTotal  prometheus.Counter
	firstFreeLBA prometheus.Gauge
}

// New creates and registers the index engine's collectors against the
// given registerer (use prometheus.DefaultRegisterer for a process-global
// registry, or a fresh *prometheus.Registry in tests to avoid collisions).
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		opsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bptree_operations_total",
				Help: "Total number of search/insert operations by result.",
			},
			[]string{"op", "result"},
		),
		opDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bptree_operation_duration_seconds",
				Help:    "Duration of search/insert operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		splitsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "bptree_splits_total",
				Help: "Total number of node splits performed.",
			},
		),
		firstFreeLBA: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "bptree_first_free_block",
				Help: "Current value of the bump-allocator free-block cursor.",
			},
		),
	}
}

// ObserveFind records a completed Find/Search call.
func (m *Metrics) ObserveFind(hit bool, d time.Duration) {
	if m == nil {
		return
	}
	result := statusMiss
	if hit {
		result = statusHit
	}
	m.opsTotal.WithLabelValues("find", result).Inc()
	m.opDuration.WithLabelValues("find").Observe(d.Seconds())
}

// ObserveInsert records a completed Insert call. result is "update" when
// an existing key's record was overwritten in place, "insert" for a new
// key, and "full" when the device had no free blocks left.
func (m *Metrics) ObserveInsert(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.opsTotal.WithLabelValues("insert", result).Inc()
	m.opDuration.WithLabelValues("insert").Observe(d.Seconds())
}

// ObserveSplit records one node split (leaf or interior).
func (m *Metrics) ObserveSplit() {
	if m == nil {
		return
	}
	m.splitsTotal.Inc()
}

// SetFirstFreeBlock publishes the current bump-allocator cursor.
func (m *Metrics) SetFirstFreeBlock(lba uint64) {
	if m == nil {
		return
	}
	m.firstFreeLBA.Set(float64(lba))
}
