// Package metrics provides Prometheus metrics collection.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector implements the MetricsCollector port using Prometheus.
type Collector struct {
	lookups             *prometheus.CounterVec
	selections          *prometheus.CounterVec
	selectionDuration   prometheus.Histogram
	databaseEntries     prometheus.Gauge
	databaseRegions     prometheus.Gauge
	databaseLoads       *prometheus.CounterVec
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// NewCollector creates a new Prometheus metrics collector registered with
// reg. A nil reg uses the default registry.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	if namespace == "" {
		namespace = "gnss"
	}

	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	} else if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}
	factory := promauto.With(reg)

	return &Collector{
		gatherer: gatherer,

		lookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lookups_total",
				Help:      "Total number of identity lookups",
			},
			[]string{"kind", "result"},
		),

		selections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "selections_total",
				Help:      "Total number of coverage selections by resulting service",
			},
			[]string{"constellation"},
		),

		selectionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "selection_duration_seconds",
				Help:      "Coverage selection duration in seconds",
				Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
			},
		),

		databaseEntries: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "database_entries",
				Help:      "Number of entries in the SBAS database",
			},
		),

		databaseRegions: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "database_coverage_regions",
				Help:      "Number of SBAS entries with a coverage region",
			},
		),

		databaseLoads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "database_loads_total",
				Help:      "Total number of SBAS database load attempts",
			},
			[]string{"source", "status"},
		),

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

// IncLookup increments the lookup counter.
func (c *Collector) IncLookup(kind string, found bool) {
	result := "found"
	if !found {
		result = "not_found"
	}
	c.lookups.WithLabelValues(kind, result).Inc()
}

// IncSelection increments the selection counter.
func (c *Collector) IncSelection(constellation string) {
	c.selections.WithLabelValues(constellation).Inc()
}

// ObserveSelectionDuration records selection duration.
func (c *Collector) ObserveSelectionDuration(duration time.Duration) {
	c.selectionDuration.Observe(duration.Seconds())
}

// SetDatabaseEntries sets the database size gauges.
func (c *Collector) SetDatabaseEntries(total, withCoverage int) {
	c.databaseEntries.Set(float64(total))
	c.databaseRegions.Set(float64(withCoverage))
}

// IncDatabaseLoads increments the database load counter.
func (c *Collector) IncDatabaseLoads(source string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	c.databaseLoads.WithLabelValues(source, status).Inc()
}

// IncHTTPRequests increments the HTTP request counter.
func (c *Collector) IncHTTPRequests(method, path, status string) {
	c.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
}

// ObserveHTTPDuration records HTTP request duration.
func (c *Collector) ObserveHTTPDuration(method, path string, duration time.Duration) {
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// Handler returns the Prometheus HTTP handler for the collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// Handler returns the Prometheus HTTP handler for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns HTTP middleware for metrics collection.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		wrapped := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		path := routePath(r)
		status := statusToString(wrapped.statusCode)

		c.IncHTTPRequests(r.Method, path, status)
		c.ObserveHTTPDuration(r.Method, path, duration)
	})
}

type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// routePath returns the matched route template ("/api/v1/sv/{id}") so
// path variables do not create new label values.
func routePath(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return normalizePath(r.URL.Path)
}

// normalizePath bounds the length of unmatched paths.
func normalizePath(path string) string {
	switch {
	case len(path) > 20:
		return path[:20] + "..."
	default:
		return path
	}
}

// statusToString converts HTTP status code to string category.
func statusToString(code int) string {
	switch {
	case code >= 100 && code < 600:
		return strconv.Itoa(code/100) + "xx"
	default:
		return "unknown"
	}
}
