package pathbind

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the scheduler's Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "pathbind").
	Namespace string

	// Subsystem is the metrics subsystem (default: "updater").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures the scheduler metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// Metrics holds the scheduler's Prometheus metrics. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	refsEnqueued  prometheus.Counter
	batchesTotal  prometheus.Counter
	batchSize     prometheus.Histogram
	affectedPaths prometheus.Histogram
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
}

// NewMetrics registers and returns the scheduler metrics.
func NewMetrics(opts ...MetricsOption) *Metrics {
	cfg := MetricsConfig{
		Namespace: "pathbind",
		Subsystem: "updater",
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	factory := promauto.With(cfg.Registry)
	return &Metrics{
		refsEnqueued: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "refs_enqueued_total",
			Help:        "Change refs accepted by the scheduler.",
			ConstLabels: cfg.ConstLabels,
		}),
		batchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "batches_total",
			Help:        "Render batches flushed.",
			ConstLabels: cfg.ConstLabels,
		}),
		batchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "batch_size",
			Help:        "Refs per flushed batch.",
			ConstLabels: cfg.ConstLabels,
			Buckets:     prometheus.ExponentialBuckets(1, 2, 12),
		}),
		affectedPaths: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "affected_paths",
			Help:        "Affected paths per dependency collection.",
			ConstLabels: cfg.ConstLabels,
			Buckets:     prometheus.ExponentialBuckets(1, 2, 12),
		}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "collect_cache_hits_total",
			Help:        "Dependency collections served from the per-path cache.",
			ConstLabels: cfg.ConstLabels,
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "collect_cache_misses_total",
			Help:        "Dependency collections that walked the graph.",
			ConstLabels: cfg.ConstLabels,
		}),
	}
}

func (m *Metrics) recordEnqueued() {
	if m == nil {
		return
	}
	m.refsEnqueued.Inc()
}

func (m *Metrics) recordBatch(size int) {
	if m == nil {
		return
	}
	m.batchesTotal.Inc()
	m.batchSize.Observe(float64(size))
}

func (m *Metrics) recordCollect(hit bool, affected int) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
	m.affectedPaths.Observe(float64(affected))
}
