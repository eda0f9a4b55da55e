// Package metrics implements the observability hooks with Prometheus
// collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/graphmorph/pkg/observability"
)

const namespace = "graphmorph"

// Registry holds every graphmorph collector.
type Registry struct {
	registry *prometheus.Registry

	// Pipeline
	StageDuration  *prometheus.HistogramVec
	StageErrors    *prometheus.CounterVec
	LayoutsTotal   *prometheus.CounterVec
	LayoutDuration *prometheus.HistogramVec
	NetworkNodes   prometheus.Histogram
	FramesTotal    prometheus.Counter
	RendersTotal   *prometheus.CounterVec

	// Cache
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
	CacheBytes  *prometheus.CounterVec

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPInFlight        prometheus.Gauge
}

// NewRegistry creates a registry with Go runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{registry: reg}
	r.initPipelineMetrics()
	r.initCacheMetrics()
	r.initHTTPMetrics()
	return r
}

func (r *Registry) initPipelineMetrics() {
	f := promauto.With(r.registry)

	r.StageDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"stage"},
	)
	r.StageErrors = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_errors_total",
			Help:      "Total number of failed pipeline stages",
		},
		[]string{"stage"},
	)
	r.LayoutsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layouts_total",
			Help:      "Total number of layout computations",
		},
		[]string{"layout", "status"},
	)
	r.LayoutDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_duration_seconds",
			Help:      "Layout computation duration in seconds",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"layout"},
	)
	r.NetworkNodes = f.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "network_nodes",
			Help:      "Number of nodes per built network",
			Buckets:   []float64{10, 50, 100, 500, 1000, 5000},
		},
	)
	r.FramesTotal = f.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Total number of animation frames sequenced",
		},
	)
	r.RendersTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Total number of rendered artifacts by format",
		},
		[]string{"format", "status"},
	)
}

func (r *Registry) initCacheMetrics() {
	f := promauto.With(r.registry)

	r.CacheHits = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of cache hits",
		},
		[]string{"key_type"},
	)
	r.CacheMisses = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of cache misses",
		},
		[]string{"key_type"},
	)
	r.CacheBytes = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Total bytes written to the cache",
		},
		[]string{"key_type"},
	)
}

func (r *Registry) initHTTPMetrics() {
	f := promauto.With(r.registry)

	r.HTTPRequestsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	r.HTTPRequestDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	r.HTTPInFlight = f.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests being served",
		},
	)
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Gatherer exposes the underlying registry for tests and custom exporters.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.registry }

// Install registers hooks backed by r as the process-wide observability
// hooks.
func Install(r *Registry) {
	observability.SetPipelineHooks(NewPipelineHooks(r))
	observability.SetCacheHooks(NewCacheHooks(r))
	observability.SetHTTPHooks(NewHTTPHooks(r))
}
