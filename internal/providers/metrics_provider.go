package providers

import (
	"net/http"
	"socialstats/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits(kind string)
	IncCacheMisses(kind string)
	IncCacheEvictions(kind string)
	IncFetchAttempts(host string)
	IncFetchRetries(host string)
	IncFetchFailures(host string)
	IncAdapterFailures(adapter string)
	SetFollowers(platform string, count int)
	ObservePersistenceDuration(duration time.Duration)
	ObserveRunDuration(duration time.Duration)
	Handler() http.Handler
	WriteTextfile(path string) error
}

type MetricsProvider struct {
	registry            *prometheus.Registry
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           *prometheus.CounterVec
	cacheMisses         *prometheus.CounterVec
	cacheEvictions      *prometheus.CounterVec
	fetchAttempts       *prometheus.CounterVec
	fetchRetries        *prometheus.CounterVec
	fetchFailures       *prometheus.CounterVec
	adapterFailures     *prometheus.CounterVec
	followers           *prometheus.GaugeVec
	persistenceDuration prometheus.Histogram
	runDuration         prometheus.Histogram
	lastRun             prometheus.Gauge
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits(kind string) {
	m.cacheHits.WithLabelValues(kind).Inc()
}

func (m *MetricsProvider) IncCacheMisses(kind string) {
	m.cacheMisses.WithLabelValues(kind).Inc()
}

func (m *MetricsProvider) IncCacheEvictions(kind string) {
	m.cacheEvictions.WithLabelValues(kind).Inc()
}

func (m *MetricsProvider) IncFetchAttempts(host string) {
	m.fetchAttempts.WithLabelValues(host).Inc()
}

func (m *MetricsProvider) IncFetchRetries(host string) {
	m.fetchRetries.WithLabelValues(host).Inc()
}

func (m *MetricsProvider) IncFetchFailures(host string) {
	m.fetchFailures.WithLabelValues(host).Inc()
}

func (m *MetricsProvider) IncAdapterFailures(adapter string) {
	m.adapterFailures.WithLabelValues(adapter).Inc()
}

func (m *MetricsProvider) SetFollowers(platform string, count int) {
	m.followers.WithLabelValues(platform).Set(float64(count))
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) ObserveRunDuration(duration time.Duration) {
	m.runDuration.Observe(duration.Seconds())
	m.lastRun.SetToCurrentTime()
}

func (m *MetricsProvider) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// WriteTextfile dumps the registry in the node-exporter textfile format.
func (m *MetricsProvider) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &MetricsProvider{
		registry: reg,

		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "socialstats_requests_total",
			Help: "Total number of HTTP requests served",
		}, []string{"endpoint", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "socialstats_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "socialstats_cache_hits_total",
			Help: "Cache hits per key kind",
		}, []string{"kind"}),

		cacheMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "socialstats_cache_misses_total",
			Help: "Cache misses per key kind",
		}, []string{"kind"}),

		cacheEvictions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "socialstats_cache_evictions_total",
			Help: "Entries dropped before their TTL, per key kind",
		}, []string{"kind"}),

		fetchAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "socialstats_fetch_attempts_total",
			Help: "Outbound API request attempts per host",
		}, []string{"host"}),

		fetchRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "socialstats_fetch_retries_total",
			Help: "Outbound API retries per host",
		}, []string{"host"}),

		fetchFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "socialstats_fetch_failures_total",
			Help: "Outbound API requests that failed after all attempts",
		}, []string{"host"}),

		adapterFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "socialstats_adapter_failures_total",
			Help: "Adapter runs that produced diagnostics",
		}, []string{"adapter"}),

		followers: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "socialstats_followers",
			Help: "Last persisted follower count per platform",
		}, []string{"platform"}),

		persistenceDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "socialstats_persistence_duration_seconds",
			Help:    "Duration of snapshot writes in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "socialstats_run_duration_seconds",
			Help:    "Duration of a full collection run in seconds",
			Buckets: []float64{1, 2, 5, 10, 30, 60, 120, 300},
		}),

		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Name: "socialstats_last_run_timestamp_seconds",
			Help: "Unix time of the last completed run",
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits(_ string)                            {}
func (n *noopMetrics) IncCacheMisses(_ string)                          {}
func (n *noopMetrics) IncCacheEvictions(_ string)                       {}
func (n *noopMetrics) IncFetchAttempts(_ string)                        {}
func (n *noopMetrics) IncFetchRetries(_ string)                         {}
func (n *noopMetrics) IncFetchFailures(_ string)                        {}
func (n *noopMetrics) IncAdapterFailures(_ string)                      {}
func (n *noopMetrics) SetFollowers(_ string, _ int)                     {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) ObserveRunDuration(_ time.Duration)               {}
func (n *noopMetrics) WriteTextfile(_ string) error                     { return nil }

func (n *noopMetrics) Handler() http.Handler {
	return http.NotFoundHandler()
}
