// Package observability exposes Prometheus metrics for the API server.
package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application metric collectors behind a private registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests       *prometheus.CounterVec
	ImageUploads       prometheus.Counter
	TaskTransitions    *prometheus.CounterVec
	AnnotationsCreated *prometheus.CounterVec
}

// NewMetrics creates and registers all application metric collectors.
func NewMetrics() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wildtag_http_requests_total",
			Help: "Total number of HTTP requests handled, by method and status.",
		}, []string{"method", "status"}),
		ImageUploads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wildtag_image_uploads_total",
			Help: "Total number of images stored.",
		}),
		TaskTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wildtag_task_transitions_total",
			Help: "Total number of task state transitions, by transition.",
		}, []string{"transition"}),
		AnnotationsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wildtag_annotations_created_total",
			Help: "Total number of annotations created, by kind.",
		}, []string{"kind"}),
	}

	collectors := []prometheus.Collector{
		m.HTTPRequests,
		m.ImageUploads,
		m.TaskTransitions,
		m.AnnotationsCreated,
	}
	for _, c := range collectors {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metric collector: %w", err)
		}
	}

	return m, nil
}

// Handler returns an HTTP handler serving the metric registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
