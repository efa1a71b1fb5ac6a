package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the collectors exported on /metrics.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	listings prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lotmap",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"pattern", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lotmap",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"pattern"}),
		listings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lotmap",
			Name:      "listings_annotated",
			Help:      "Listings returned by the last listings request.",
		}),
	}

	reg.MustRegister(m.requests, m.duration, m.listings)
	return m
}
