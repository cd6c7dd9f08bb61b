// Package metrics exposes session activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/ai-bank/kgadmin/internal/graph"
	"github.com/ai-bank/kgadmin/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "kgadmin"

// Collector holds the session metrics and the registry they live in.
type Collector struct {
	registry *prometheus.Registry

	Operations *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
	Nodes      prometheus.Gauge
	Edges      prometheus.Gauge
}

var _ session.Observer = (*Collector)(nil)

// NewCollector creates a collector backed by its own registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	operations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "session_operations_total",
			Help:      "Total number of session operations by outcome",
		},
		[]string{"op", "outcome"},
	)

	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "session_operation_duration_seconds",
			Help:      "Session operation duration in seconds, backend round trips included",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	nodes := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "resident_nodes",
		Help:      "Number of nodes in the resident graph",
	})

	edges := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "resident_edges",
		Help:      "Number of relationships in the resident graph",
	})

	registry.MustRegister(operations, duration, nodes, edges)

	return &Collector{
		registry:   registry,
		Operations: operations,
		Duration:   duration,
		Nodes:      nodes,
		Edges:      edges,
	}
}

// ObserveOperation records one finished session operation.
func (c *Collector) ObserveOperation(op string, outcome session.Outcome, d time.Duration) {
	c.Operations.WithLabelValues(op, string(outcome)).Inc()
	c.Duration.WithLabelValues(op).Observe(d.Seconds())
}

// ObserveGraph records the size of the resident graph.
func (c *Collector) ObserveGraph(stats graph.Stats) {
	c.Nodes.Set(float64(stats.Nodes))
	c.Edges.Set(float64(stats.Edges))
}

// Registry returns the Prometheus registry for this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
