// Package metrics exposes Prometheus metrics for classification runs and the
// HTTP API.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"horao/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for the application
type Registry struct {
	// Classification Metrics
	ClassificationsTotal   *prometheus.CounterVec
	ClassificationDuration *prometheus.HistogramVec
	LinkAnomaliesTotal     *prometheus.CounterVec

	// Fabric Metrics
	FabricDevices *prometheus.GaugeVec
	FabricLinks   *prometheus.GaugeVec

	// HTTP Metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initClassificationMetrics()
	r.initFabricMetrics()
	r.initHTTPMetrics()

	return r
}

func (r *Registry) initClassificationMetrics() {
	r.ClassificationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "horao_classifications_total",
			Help: "Total number of topology classifications",
		},
		[]string{"network", "topology"},
	)

	r.ClassificationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "horao_classification_duration_seconds",
			Help:    "Graph build and classification duration in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1.0, 10.0},
		},
		[]string{"network"},
	)

	r.LinkAnomaliesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "horao_link_anomalies_total",
			Help: "Total number of inventory anomalies found while building graphs",
		},
		[]string{"network", "reason"},
	)
}

func (r *Registry) initFabricMetrics() {
	r.FabricDevices = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "horao_fabric_devices",
			Help: "Devices in the last classified snapshot",
		},
		[]string{"network", "kind"},
	)

	r.FabricLinks = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "horao_fabric_links",
			Help: "Links in the last classified snapshot by health",
		},
		[]string{"network", "health"},
	)
}

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "horao_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "horao_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
}

// RecordClassification records one classification run
func (r *Registry) RecordClassification(c domain.Classification, duration time.Duration) {
	r.ClassificationsTotal.WithLabelValues(c.Network, string(c.Topology)).Inc()
	r.ClassificationDuration.WithLabelValues(c.Network).Observe(duration.Seconds())

	for _, a := range c.Anomalies {
		r.LinkAnomaliesTotal.WithLabelValues(c.Network, domain.AnomalyReason(a)).Inc()
	}

	for _, kind := range []domain.DeviceKind{domain.KindSwitch, domain.KindRouter, domain.KindFirewall} {
		r.FabricDevices.WithLabelValues(c.Network, string(kind)).Set(float64(c.Stats.ByKind[kind]))
	}
	r.FabricLinks.WithLabelValues(c.Network, "up").Set(float64(c.Stats.LinksUp))
	r.FabricLinks.WithLabelValues(c.Network, "degraded").Set(float64(c.Stats.LinksDegraded))
	r.FabricLinks.WithLabelValues(c.Network, "down").Set(float64(c.Stats.LinksDown))
}

// ForgetNetwork drops the gauges of a network that no longer exists
func (r *Registry) ForgetNetwork(network string) {
	r.FabricDevices.DeletePartialMatch(prometheus.Labels{"network": network})
	r.FabricLinks.DeletePartialMatch(prometheus.Labels{"network": network})
}

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
