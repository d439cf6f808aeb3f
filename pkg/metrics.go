package ustrcache

// metrics.go contains a thin abstraction over Prometheus so that ustrcache
// can be used with or without metrics. When the user calls Configure(...,
// WithMetrics(reg)), we create labeled metrics and expose them via the
// registry. Otherwise a no-op sink is used and the hot path does not pay
// for metric updates.
//
// All metrics are **shard-level** gauges, snapshotted from the shard
// array's own lifetime counters after every admission; aggregations can
// easily be done on the Prometheus side via sum(). table_grows and
// arena_retirements are monotonic lifetime counts exposed as gauges rather
// than counters because the interner only knows the current total, not the
// delta since the last scrape — Set(), not Inc(), is the only safe
// operation from a snapshot.
//
// ┌──────────────────┐
// │ Metric           │
// ├──────────────────┤
// │ entries          │
// │ bytes_allocated  │
// │ bytes_capacity   │
// │ table_grows      │
// │ arena_retirements│
// └──────────────────┘
//
// © 2025 arena-cache authors. MIT License.

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

/*
   ---------------- Public (package-level) API ----------------
*/

// metricsSink is an internal interface abstracting away the concrete
// backend (Prometheus vs noop). Not exposed outside the package.
type metricsSink interface {
	setGrows(shard int, value int64)
	setRetires(shard int, value int64)
	setEntries(shard int, value int64)
	setBytesAllocated(shard int, value int64)
	setBytesCapacity(shard int, value int64)
}

/*
   ---------------- No-op implementation ----------------
*/

type noopMetrics struct{}

func (noopMetrics) setGrows(int, int64)          {}
func (noopMetrics) setRetires(int, int64)        {}
func (noopMetrics) setEntries(int, int64)        {}
func (noopMetrics) setBytesAllocated(int, int64) {}
func (noopMetrics) setBytesCapacity(int, int64)  {}

/*
   ---------------- Prometheus implementation ----------------
*/

type promMetrics struct {
	grows     *prometheus.GaugeVec
	retires   *prometheus.GaugeVec
	entries   *prometheus.GaugeVec
	allocated *prometheus.GaugeVec
	capacity  *prometheus.GaugeVec
}

func newPromMetrics(reg *prometheus.Registry) *promMetrics {
	label := []string{"shard"}

	pm := &promMetrics{
		grows: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "ustrcache",
				Name:      "table_grows",
				Help:      "Lifetime count of open-addressed table doublings.",
			}, label),
		retires: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "ustrcache",
				Name:      "arena_retirements",
				Help:      "Lifetime count of arenas retired on overflow.",
			}, label),
		entries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "ustrcache",
				Name:      "entries",
				Help:      "Number of interned strings.",
			}, label),
		allocated: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "ustrcache",
				Name:      "bytes_allocated",
				Help:      "Bytes handed out across all arenas.",
			}, label),
		capacity: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "ustrcache",
				Name:      "bytes_capacity",
				Help:      "Total arena capacity.",
			}, label),
	}

	reg.MustRegister(pm.grows, pm.retires, pm.entries, pm.allocated, pm.capacity)
	return pm
}

func (m *promMetrics) setGrows(shard int, value int64) {
	m.grows.WithLabelValues(strconv.Itoa(shard)).Set(float64(value))
}
func (m *promMetrics) setRetires(shard int, value int64) {
	m.retires.WithLabelValues(strconv.Itoa(shard)).Set(float64(value))
}
func (m *promMetrics) setEntries(shard int, value int64) {
	m.entries.WithLabelValues(strconv.Itoa(shard)).Set(float64(value))
}
func (m *promMetrics) setBytesAllocated(shard int, value int64) {
	m.allocated.WithLabelValues(strconv.Itoa(shard)).Set(float64(value))
}
func (m *promMetrics) setBytesCapacity(shard int, value int64) {
	m.capacity.WithLabelValues(strconv.Itoa(shard)).Set(float64(value))
}

/*
   ---------------- Factory ----------------
*/

func newMetricsSink(reg *prometheus.Registry) metricsSink {
	if reg == nil {
		return noopMetrics{}
	}
	return newPromMetrics(reg)
}
