package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the orchestrator's Prometheus collectors. Each instance owns
// its registry, so several applications (or tests) never collide. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Bootstrap metrics
	BootstrapDuration prometheus.Histogram
	BootstrapStep     *prometheus.HistogramVec
	BootstrapFailures *prometheus.CounterVec
	Ready             prometheus.Gauge

	// Manifest metrics
	ManifestLoads *prometheus.CounterVec

	// Provider metrics
	ProvidersLoaded prometheus.Gauge
	ProviderHooks   *prometheus.CounterVec

	// Event metrics
	EventsDispatched *prometheus.CounterVec

	// Cache metrics
	CacheClears *prometheus.CounterVec

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry, together with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		BootstrapDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "soma_bootstrap_duration_seconds",
				Help:    "Time taken by a complete bootstrap",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
		),
		BootstrapStep: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "soma_bootstrap_step_duration_seconds",
				Help:    "Time taken by each bootstrap step",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"step"},
		),
		BootstrapFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "soma_bootstrap_failures_total",
				Help: "Bootstrap failures by step",
			},
			[]string{"step"},
		),
		Ready: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "soma_ready",
				Help: "1 once the application reached its ready state",
			},
		),
		ManifestLoads: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "soma_manifest_loads_total",
				Help: "Manifest loads by origin (cache or source)",
			},
			[]string{"origin"},
		),
		ProvidersLoaded: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "soma_providers_loaded",
				Help: "Number of providers registered and booted",
			},
		),
		ProviderHooks: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "soma_provider_hooks_total",
				Help: "Provider hook invocations by hook and result",
			},
			[]string{"hook", "result"},
		),
		EventsDispatched: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "soma_events_dispatched_total",
				Help: "Lifecycle events dispatched",
			},
			[]string{"event"},
		),
		CacheClears: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "soma_cache_clears_total",
				Help: "Cache directories cleared",
			},
			[]string{"cache"},
		),
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "soma_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "soma_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveStep records the duration of one bootstrap step.
func (m *Metrics) ObserveStep(step string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.BootstrapStep.WithLabelValues(step).Observe(d.Seconds())
	if err != nil {
		m.BootstrapFailures.WithLabelValues(step).Inc()
	}
}

// ObserveBootstrap records a completed bootstrap.
func (m *Metrics) ObserveBootstrap(d time.Duration) {
	if m == nil {
		return
	}
	m.BootstrapDuration.Observe(d.Seconds())
	m.Ready.Set(1)
}

// ManifestLoaded counts a manifest load.
func (m *Metrics) ManifestLoaded(fromCache bool) {
	if m == nil {
		return
	}
	origin := "source"
	if fromCache {
		origin = "cache"
	}
	m.ManifestLoads.WithLabelValues(origin).Inc()
}

// ProviderHook counts a provider hook invocation.
func (m *Metrics) ProviderHook(hook string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ProviderHooks.WithLabelValues(hook, result).Inc()
}

// SetProvidersLoaded records the number of loaded providers.
func (m *Metrics) SetProvidersLoaded(n int) {
	if m == nil {
		return
	}
	m.ProvidersLoaded.Set(float64(n))
}

// EventDispatched counts a lifecycle event.
func (m *Metrics) EventDispatched(name string) {
	if m == nil {
		return
	}
	m.EventsDispatched.WithLabelValues(name).Inc()
}

// CacheCleared counts a cleared cache directory.
func (m *Metrics) CacheCleared(key string) {
	if m == nil {
		return
	}
	m.CacheClears.WithLabelValues(key).Inc()
}

// RecordRequest records one HTTP request.
func (m *Metrics) RecordRequest(method, path, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}
