// Package metrics defines the Prometheus collectors shared by the API and
// worker services and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Job outcome label values.
const (
	OutcomeDone    = "done"
	OutcomeFailed  = "failed"
	OutcomeDropped = "dropped"
)

// Metrics holds all Prometheus collectors for the ingestion backend.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	JobsTriggeredTotal  prometheus.Counter
	JobsFinishedTotal   *prometheus.CounterVec
	DeliveriesTotal     *prometheus.CounterVec
	DeliveryDuration    prometheus.Histogram

	registry *prometheus.Registry
}

// New creates all collectors on a private registry so multiple instances
// can coexist in tests.
func New() *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		JobsTriggeredTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ingestion_jobs_triggered_total",
				Help: "Total ingestion jobs created and enqueued.",
			},
		),
		JobsFinishedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingestion_jobs_finished_total",
				Help: "Ingestion jobs finished by outcome (done, failed, dropped).",
			},
			[]string{"outcome"},
		),
		DeliveriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingestion_deliveries_total",
				Help: "Per-document chunk deliveries to the RAG endpoint by result.",
			},
			[]string{"result"},
		),
		DeliveryDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ingestion_delivery_duration_seconds",
				Help:    "Latency of one document delivery to the RAG endpoint.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
		),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.JobsTriggeredTotal,
		m.JobsFinishedTotal,
		m.DeliveriesTotal,
		m.DeliveryDuration,
	)

	return m
}

// Handler returns the scrape handler for this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
