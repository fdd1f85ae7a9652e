package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Skip reasons recorded by RecordLinkSkipped.
const (
	SkipNoUsableType           = "no_usable_type"
	SkipImplementationNotFound = "implementation_not_found"
	SkipConstruction           = "construction"
	SkipCapabilityMismatch     = "capability_mismatch"
)

// Metrics provides Prometheus metrics for data getter resolution.
type Metrics struct {
	config MetricsConfig

	// Page metrics
	pageResolutions   *prometheus.CounterVec
	resolutionLatency *prometheus.HistogramVec

	// Link metrics
	linksEnumerated prometheus.Counter
	gettersResolved *prometheus.CounterVec
	linksSkipped    *prometheus.CounterVec

	// Page data metrics
	getterErrors *prometheus.CounterVec

	// Model metrics
	modelReloads *prometheus.CounterVec
	storeTriples prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		// Return a no-op metrics instance
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		pageResolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "page_resolutions_total",
				Help:      "Total number of page data getter resolutions",
			},
			[]string{"status"},
		),
		resolutionLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "page_resolution_duration_seconds",
				Help:      "Duration of page data getter resolution in seconds",
				Buckets:   buckets,
			},
			[]string{"status"},
		),

		linksEnumerated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "links_enumerated_total",
				Help:      "Total number of data getter links found on pages",
			},
		),
		gettersResolved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "getters_resolved_total",
				Help:      "Total number of data getters instantiated",
			},
			[]string{"implementation"},
		),
		linksSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "links_skipped_total",
				Help:      "Total number of data getter links skipped",
			},
			[]string{"reason"},
		),

		getterErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "getter_errors_total",
				Help:      "Total number of data getters that failed to produce data",
			},
			[]string{"implementation"},
		),

		modelReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "model_reloads_total",
				Help:      "Total number of display model reloads",
			},
			[]string{"status"},
		),
		storeTriples: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "store_triples",
				Help:      "Current number of triples in the metadata store",
			},
		),
	}

	registry.MustRegister(
		m.pageResolutions,
		m.resolutionLatency,
		m.linksEnumerated,
		m.gettersResolved,
		m.linksSkipped,
		m.getterErrors,
		m.modelReloads,
		m.storeTriples,
	)

	return m, nil
}

// RecordPageResolution records a finished page resolution.
func (m *Metrics) RecordPageResolution(status string, duration time.Duration) {
	if m == nil || m.pageResolutions == nil {
		return
	}
	m.pageResolutions.WithLabelValues(status).Inc()
	m.resolutionLatency.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordLinksEnumerated adds n to the enumerated links counter.
func (m *Metrics) RecordLinksEnumerated(n int) {
	if m == nil || m.linksEnumerated == nil {
		return
	}
	m.linksEnumerated.Add(float64(n))
}

// RecordGetterResolved records an instantiated data getter.
func (m *Metrics) RecordGetterResolved(implementation string) {
	if m == nil || m.gettersResolved == nil {
		return
	}
	m.gettersResolved.WithLabelValues(implementation).Inc()
}

// RecordLinkSkipped records a link omitted from the result.
func (m *Metrics) RecordLinkSkipped(reason string) {
	if m == nil || m.linksSkipped == nil {
		return
	}
	m.linksSkipped.WithLabelValues(reason).Inc()
}

// RecordGetterError records a data getter whose GetData failed.
func (m *Metrics) RecordGetterError(implementation string) {
	if m == nil || m.getterErrors == nil {
		return
	}
	m.getterErrors.WithLabelValues(implementation).Inc()
}

// RecordModelReload records a model reload attempt.
func (m *Metrics) RecordModelReload(status string) {
	if m == nil || m.modelReloads == nil {
		return
	}
	m.modelReloads.WithLabelValues(status).Inc()
}

// SetStoreTriples sets the current triple count.
func (m *Metrics) SetStoreTriples(n int) {
	if m == nil || m.storeTriples == nil {
		return
	}
	m.storeTriples.Set(float64(n))
}

// Timer provides a convenient way to time operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Path returns the configured metrics path.
func (m *Metrics) Path() string {
	if m == nil || m.config.Path == "" {
		return "/metrics"
	}
	return m.config.Path
}
