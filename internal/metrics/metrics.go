// Package metrics defines the Prometheus collectors exported by the gateway.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "visual_search"

// Metrics groups the gateway's collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry         *prometheus.Registry
	searches         *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	resultsReturned  prometheus.Histogram
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry together with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Search requests by mode and terminal status.",
		}, []string{"mode", "status"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of calls to the upstream search API by outcome.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"outcome"}),
		resultsReturned: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "results_per_search",
			Help:      "Number of canonical results returned per successful search.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		m.searches,
		m.upstreamDuration,
		m.resultsReturned,
		m.httpRequests,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveSearch counts a finished search.
func (m *Metrics) ObserveSearch(mode, status string, results int) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(mode, status).Inc()
	if results >= 0 {
		m.resultsReturned.Observe(float64(results))
	}
}

// ObserveUpstream records the latency of one upstream call.
func (m *Metrics) ObserveUpstream(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.upstreamDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// ObserveHTTP records one served HTTP request.
func (m *Metrics) ObserveHTTP(method, route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
