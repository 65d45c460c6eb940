// Package telemetry instruments the reactive engine, AsynX batch
// dispatch, and the STWS reconciler with Prometheus metrics and
// OpenTelemetry traces. It is ambient observability, not a spec
// feature: the engine runs identically with or without a *Metrics
// wired in, matching the teacher's middleware pattern
// (pkg/middleware/metrics.go, pkg/middleware/otel.go) of wrapping call
// sites rather than hard-wiring instrumentation into the engine.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the metrics this package registers.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "weave").
	Namespace string
	// Subsystem is the metrics subsystem (default: "").
	Subsystem string
	// ConstLabels are constant labels added to every metric.
	ConstLabels prometheus.Labels
	// Buckets sizes the tick-duration and reconcile-duration
	// histograms (default: prometheus.DefBuckets).
	Buckets []float64
	// Registry is where metrics are registered (default:
	// prometheus.DefaultRegisterer).
	Registry prometheus.Registerer
}

// MetricsOption configures a MetricsConfig.
type MetricsOption func(*MetricsConfig)

func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) { c.Namespace = namespace }
}

func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) { c.Subsystem = subsystem }
}

func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) { c.ConstLabels = labels }
}

func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) { c.Buckets = buckets }
}

func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) { c.Registry = registry }
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "weave",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds every Prometheus collector this package exposes.
type Metrics struct {
	tickDuration      prometheus.Histogram
	ticksTotal        prometheus.Counter
	runawayTotal      prometheus.Counter
	batchesTotal      prometheus.Counter
	batchSize         prometheus.Histogram
	reconcileDuration prometheus.Histogram
	reconcileOps      *prometheus.CounterVec
	activeRoots       prometheus.Gauge
}

// NewMetrics registers this package's collectors against opts'
// Registry (the default global registerer if unset).
func NewMetrics(opts ...MetricsOption) *Metrics {
	cfg := defaultMetricsConfig()
	for _, o := range opts {
		o(&cfg)
	}
	factory := promauto.With(cfg.Registry)

	return &Metrics{
		tickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "scheduler_tick_duration_seconds",
			Help:        "Duration of one scheduler queue drain (RunQueues call).",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}),
		ticksTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "scheduler_ticks_total",
			Help:        "Total number of scheduler queue drains.",
			ConstLabels: cfg.ConstLabels,
		}),
		runawayTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "scheduler_runaway_total",
			Help:        "Total number of RunawayClock trips (spec.md §4.4).",
			ConstLabels: cfg.ConstLabels,
		}),
		batchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "asynx_batches_total",
			Help:        "Total number of AsynX batch dispatches.",
			ConstLabels: cfg.ConstLabels,
		}),
		batchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "asynx_batch_size",
			Help:        "Number of tasks dispatched per AsynX batch.",
			ConstLabels: cfg.ConstLabels,
			Buckets:     []float64{1, 2, 4, 8, 16, 32, 64, 128},
		}),
		reconcileDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "stws_reconcile_duration_seconds",
			Help:        "Duration of one STWS Reconcile call.",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}),
		reconcileOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "stws_ops_total",
			Help:        "Total DOM-sink operations issued by STWS, by kind.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"kind"}),
		activeRoots: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "active_roots",
			Help:        "Number of live reactive.Scheduler roots.",
			ConstLabels: cfg.ConstLabels,
		}),
	}
}

// ObserveTick times fn (expected to be one sched.RunQueues() call) and
// records it as a scheduler tick.
func (m *Metrics) ObserveTick(fn func()) {
	start := time.Now()
	fn()
	m.tickDuration.Observe(time.Since(start).Seconds())
	m.ticksTotal.Inc()
}

// RecordRunaway records a RunawayClock trip.
func (m *Metrics) RecordRunaway() { m.runawayTotal.Inc() }

// ObserveBatch records one AsynX batch dispatch of the given size.
func (m *Metrics) ObserveBatch(size int) {
	m.batchesTotal.Inc()
	m.batchSize.Observe(float64(size))
}

// ReconcileCounts is the per-call operation tally STWS callers report
// back to ObserveReconcile.
type ReconcileCounts struct {
	Inserts  int
	Removes  int
	Replaces int
}

// ObserveReconcile times fn (expected to wrap one stws.Reconcile call)
// and records the operation counts fn reports.
func (m *Metrics) ObserveReconcile(fn func() ReconcileCounts) ReconcileCounts {
	start := time.Now()
	counts := fn()
	m.reconcileDuration.Observe(time.Since(start).Seconds())
	m.reconcileOps.WithLabelValues("insert").Add(float64(counts.Inserts))
	m.reconcileOps.WithLabelValues("remove").Add(float64(counts.Removes))
	m.reconcileOps.WithLabelValues("replace").Add(float64(counts.Replaces))
	return counts
}

// RootCreated/RootClosed track the active-roots gauge.
func (m *Metrics) RootCreated() { m.activeRoots.Inc() }
func (m *Metrics) RootClosed()  { m.activeRoots.Dec() }
