// Package metrics registers the Prometheus metrics for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	CitizensRegistered prometheus.Counter
	RequestsSubmitted  *prometheus.CounterVec
	RequestsProcessed  *prometheus.CounterVec
	DocumentsIssued    *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		CitizensRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mobywatel_citizens_registered_total",
			Help: "Total number of citizen accounts registered",
		}),
		RequestsSubmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mobywatel_requests_submitted_total",
			Help: "Total number of citizen requests submitted, by kind",
		}, []string{"kind"}),
		RequestsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mobywatel_requests_processed_total",
			Help: "Total number of citizen requests processed, by kind and outcome",
		}, []string{"kind", "outcome"}),
		DocumentsIssued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mobywatel_documents_issued_total",
			Help: "Total number of documents issued or re-issued, by kind",
		}, []string{"kind"}),
		HTTPDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mobywatel_http_request_duration_seconds",
			Help:    "Latency of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

func (m *Metrics) ObserveCitizenRegistered() {
	if m == nil {
		return
	}
	m.CitizensRegistered.Inc()
}

func (m *Metrics) ObserveRequestSubmitted(kind string) {
	if m == nil {
		return
	}
	m.RequestsSubmitted.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveRequestProcessed(kind, outcome string) {
	if m == nil {
		return
	}
	m.RequestsProcessed.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) ObserveDocumentIssued(kind string) {
	if m == nil {
		return
	}
	m.DocumentsIssued.WithLabelValues(kind).Inc()
}
