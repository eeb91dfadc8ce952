// Package observability exposes prometheus instrumentation for the
// service on a private registry.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's instruments. A nil *Metrics is safe to use;
// all record methods become no-ops.
type Metrics struct {
	registry *prometheus.Registry

	queryTotal    *prometheus.CounterVec
	queryDuration prometheus.Histogram
	entitiesGauge prometheus.Gauge
}

// NewMetrics creates the instruments on a fresh private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		queryTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "alertlens",
			Subsystem: "nerdgraph",
			Name:      "queries_total",
			Help:      "NerdGraph queries by outcome.",
		}, []string{"outcome"}),
		queryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "alertlens",
			Subsystem: "nerdgraph",
			Name:      "query_duration_seconds",
			Help:      "NerdGraph query latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		entitiesGauge: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "alertlens",
			Name:      "correlated_entities",
			Help:      "Entity count of the most recent correlation pass.",
		}),
	}
}

// ObserveQuery records one NerdGraph call.
func (m *Metrics) ObserveQuery(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.queryTotal.WithLabelValues(outcome).Inc()
	m.queryDuration.Observe(d.Seconds())
}

// SetCorrelatedEntities records the size of the latest correlated view.
func (m *Metrics) SetCorrelatedEntities(n int) {
	if m == nil {
		return
	}
	m.entitiesGauge.Set(float64(n))
}

// Handler serves the registry in prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
