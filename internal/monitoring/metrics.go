package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	ExtractionsTotal    *prometheus.CounterVec
	GenerationsTotal    *prometheus.CounterVec
	PublishTotal        *prometheus.CounterVec
	StageDuration       *prometheus.HistogramVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics registers the metrics on reg. Pass prometheus.DefaultRegisterer
// to expose them on the default /metrics handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ExtractionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gearinhere_extractions_total",
			Help: "The total number of product page extractions",
		}, []string{"source", "status"}),
		GenerationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gearinhere_generations_total",
			Help: "The total number of review completions requested",
		}, []string{"status"}),
		PublishTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gearinhere_publish_total",
			Help: "The total number of create-post calls",
		}, []string{"status"}), // 'created', 'rejected', 'error'
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gearinhere_stage_duration_seconds",
			Help:    "Duration of pipeline stages.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"stage"}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gearinhere_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gearinhere_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

func (m *Metrics) IncExtraction(source, status string) {
	m.ExtractionsTotal.WithLabelValues(source, status).Inc()
}

func (m *Metrics) IncGeneration(status string) {
	m.GenerationsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) IncPublish(status string) {
	m.PublishTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveStage(stage string, start time.Time) {
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
