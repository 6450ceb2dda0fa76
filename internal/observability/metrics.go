package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or spikes (traffic surge).
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request. Watch for: p95/p99 latency increases, SLO breaches.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight. Watch for: saturation, capacity limits.
	HTTPRequestsInFlight prometheus.Gauge

	// Open-Meteo archive call rate. Watch for: error vs success ratio.
	ArchiveAPICallsTotal *prometheus.CounterVec

	// Archive API latency per request. Watch for: p99 near the 10s client timeout.
	ArchiveAPIDuration *prometheus.HistogramVec

	// Temperature lookups by endpoint (single, range).
	TemperatureQueriesTotal *prometheus.CounterVec

	// Failed lookups by error category (see client.ErrorCategory).
	UpstreamErrorsTotal *prometheus.CounterVec
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	ArchiveAPICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archiveApiCallsTotal",
			Help: "Total number of Open-Meteo archive API calls",
		},
		[]string{"status"},
	)
	ArchiveAPIDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "archiveApiDurationSeconds",
			Help:    "Open-Meteo archive API latency in seconds (per request)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"status"},
	)
	TemperatureQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "temperatureQueriesTotal",
			Help: "Total number of temperature lookups by endpoint",
		},
		[]string{"endpoint"},
	)
	UpstreamErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstreamErrorsTotal",
			Help: "Failed temperature lookups by error category",
		},
		[]string{"category"},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		ArchiveAPICallsTotal, ArchiveAPIDuration,
		TemperatureQueriesTotal, UpstreamErrorsTotal,
	)
}

// RecordTemperatureQuery counts one lookup against endpoint ("single" or "range").
func RecordTemperatureQuery(endpoint string) {
	TemperatureQueriesTotal.WithLabelValues(endpoint).Inc()
}

// RecordUpstreamError counts one failed lookup under category.
func RecordUpstreamError(category string) {
	UpstreamErrorsTotal.WithLabelValues(category).Inc()
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
