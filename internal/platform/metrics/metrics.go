// Package metrics holds the Prometheus collectors of the catalog service.
// Every recording method is safe to call on a nil *Registry, which lets
// tests and tools build services without metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values shared by the domain counters.
const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultConflict = "conflict"
	ResultRejected = "rejected"
)

type Registry struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	registrations *prometheus.CounterVec
	logins        *prometheus.CounterVec
	products      prometheus.Counter
	deliveries    *prometheus.CounterVec
}

// New creates a registry with its own prometheus.Registry so that tests can
// build as many as they like without duplicate registration panics.
func New() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "account_registrations_total",
			Help: "Total number of account registrations by result",
		}, []string{"result"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "account_logins_total",
			Help: "Total number of authentication attempts by result",
		}, []string{"result"}),
		products: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catalog_products_created_total",
			Help: "Total number of products created",
		}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notify_deliveries_total",
			Help: "Total number of registration notifications by result",
		}, []string{"result"}),
	}

	r.registry.MustRegister(collectors.NewGoCollector())
	r.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.registry.MustRegister(
		r.httpRequests,
		r.httpDuration,
		r.registrations,
		r.logins,
		r.products,
		r.deliveries,
	)
	return r
}

// Gatherer exposes the underlying registry, mainly for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (r *Registry) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (r *Registry) RecordRegistration(result string) {
	if r == nil {
		return
	}
	r.registrations.WithLabelValues(result).Inc()
}

func (r *Registry) RecordLogin(result string) {
	if r == nil {
		return
	}
	r.logins.WithLabelValues(result).Inc()
}

func (r *Registry) RecordProductCreated() {
	if r == nil {
		return
	}
	r.products.Inc()
}

func (r *Registry) RecordDelivery(result string) {
	if r == nil {
		return
	}
	r.deliveries.WithLabelValues(result).Inc()
}

// GinMiddleware records one observation per request. Unmatched routes are
// reported as "unmatched" to keep label cardinality bounded.
func (r *Registry) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		r.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
