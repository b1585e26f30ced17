package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Abdurahmanit/GroupProject/property-portal/internal/platform/logger"
)

// MetricsManager holds the portal's Prometheus metrics.
type MetricsManager struct {
	Registry               *prometheus.Registry
	PropertiesCreatedTotal prometheus.Counter
	PropertyUpdatesTotal   prometheus.Counter
	PropertyDeletesTotal   prometheus.Counter
	ContactMessagesTotal   *prometheus.CounterVec   // by outcome
	CacheLookupsTotal      *prometheus.CounterVec   // by tier and result
	UpstreamErrorsTotal    *prometheus.CounterVec   // by operation and error type
	HTTPRequestsTotal      *prometheus.CounterVec   // by method, route and status
	HTTPRequestLatency     *prometheus.HistogramVec // by method and route
	SearchFetchesTotal     *prometheus.CounterVec   // by outcome
	SearchFetchLatency     prometheus.Histogram
}

// NewMetricsManager registers all metrics on a private registry under the
// given namespace.
func NewMetricsManager(namespace string) *MetricsManager {
	registry := prometheus.NewRegistry()

	m := &MetricsManager{
		Registry: registry,
		PropertiesCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "properties_created_total",
			Help:      "Total number of properties created.",
		}),
		PropertyUpdatesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "property_updates_total",
			Help:      "Total number of properties updated.",
		}),
		PropertyDeletesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "property_deletes_total",
			Help:      "Total number of properties deleted.",
		}),
		ContactMessagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contact_messages_total",
			Help:      "Contact form submissions by outcome.",
		}, []string{"outcome"}),
		CacheLookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by tier and result.",
		}, []string{"tier", "result"}),
		UpstreamErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "Property API errors by operation and error type.",
		}, []string{"operation", "error_type"}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPRequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_latency_seconds",
			Help:      "Latency of HTTP requests by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		SearchFetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_fetches_total",
			Help:      "Search fetches by outcome: started, success, error or discarded.",
		}, []string{"outcome"}),
		SearchFetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_fetch_latency_seconds",
			Help:      "Latency of settled search fetches.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	registry.MustRegister(
		m.PropertiesCreatedTotal,
		m.PropertyUpdatesTotal,
		m.PropertyDeletesTotal,
		m.ContactMessagesTotal,
		m.CacheLookupsTotal,
		m.UpstreamErrorsTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestLatency,
		m.SearchFetchesTotal,
		m.SearchFetchLatency,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

func (m *MetricsManager) CacheHit(tier string) {
	m.CacheLookupsTotal.WithLabelValues(tier, "hit").Inc()
}

func (m *MetricsManager) CacheMiss(tier string) {
	m.CacheLookupsTotal.WithLabelValues(tier, "miss").Inc()
}

func (m *MetricsManager) PropertyCreated() { m.PropertiesCreatedTotal.Inc() }
func (m *MetricsManager) PropertyUpdated() { m.PropertyUpdatesTotal.Inc() }
func (m *MetricsManager) PropertyDeleted() { m.PropertyDeletesTotal.Inc() }

func (m *MetricsManager) ContactSubmitted(outcome string) {
	m.ContactMessagesTotal.WithLabelValues(outcome).Inc()
}

func (m *MetricsManager) UpstreamError(operation, errorType string) {
	m.UpstreamErrorsTotal.WithLabelValues(operation, errorType).Inc()
}

func (m *MetricsManager) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// FetchObserver reports search controller activity into m.
func (m *MetricsManager) FetchObserver() *FetchObserver {
	return &FetchObserver{m: m}
}

type FetchObserver struct {
	m *MetricsManager
}

func (o *FetchObserver) FetchStarted() {
	o.m.SearchFetchesTotal.WithLabelValues("started").Inc()
}

func (o *FetchObserver) FetchFinished(err error, elapsed time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	o.m.SearchFetchesTotal.WithLabelValues(outcome).Inc()
	o.m.SearchFetchLatency.Observe(elapsed.Seconds())
}

func (o *FetchObserver) FetchDiscarded() {
	o.m.SearchFetchesTotal.WithLabelValues("discarded").Inc()
}

func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// StartMetricsServer serves /metrics on port until the listener fails. An
// empty port disables the server.
func StartMetricsServer(port string, log logger.Logger, registry *prometheus.Registry) error {
	if port == "" {
		log.Info("Prometheus metrics server port not configured, server will not start.")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(registry))

	log.Infow("Prometheus metrics server starting", "port", port, "path", "/metrics")

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
