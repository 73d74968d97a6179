// Package metrics exposes Prometheus metrics for the topology service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace is the metric namespace of the topology service.
const Namespace = "topology"

// GraphRecorder records graph build observations. Implemented by
// GraphCollector and GraphNoopCollector.
type GraphRecorder interface {
	ObserveGraphBuild(duration time.Duration, nodes, edges int)
}

// GraphCollector collects metrics about graph builds.
// Implements the prometheus.Collector interface.
type GraphCollector struct {
	// Metrics
	buildDuration prometheus.Histogram
	graphsBuilt   prometheus.Counter
	lastNodeCount prometheus.Gauge
	lastEdgeCount prometheus.Gauge
}

// NewGraphCollector creates a new GraphCollector.
func NewGraphCollector(constLabels map[string]string) *GraphCollector {
	return &GraphCollector{
		buildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:        "graph_build_milliseconds",
				Namespace:   Namespace,
				Help:        "Duration in milliseconds of a topology graph build",
				ConstLabels: constLabels,
				Buckets:     []float64{1, 5, 10, 50, 100, 500, 1000},
			},
		),
		graphsBuilt: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name:        "graphs_built_total",
				Namespace:   Namespace,
				Help:        "Number of topology graphs built",
				ConstLabels: constLabels,
			},
		),
		lastNodeCount: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name:        "last_graph_nodes",
				Namespace:   Namespace,
				Help:        "Number of nodes in the last built topology graph",
				ConstLabels: constLabels,
			},
		),
		lastEdgeCount: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name:        "last_graph_edges",
				Namespace:   Namespace,
				Help:        "Number of edges in the last built topology graph",
				ConstLabels: constLabels,
			},
		),
	}
}

// ObserveGraphBuild records the duration and size of one graph build.
func (c *GraphCollector) ObserveGraphBuild(duration time.Duration, nodes, edges int) {
	c.buildDuration.Observe(float64(duration) / float64(time.Millisecond))
	c.graphsBuilt.Inc()
	c.lastNodeCount.Set(float64(nodes))
	c.lastEdgeCount.Set(float64(edges))
}

// Describe implements prometheus.Collector interface Describe method.
func (c *GraphCollector) Describe(ch chan<- *prometheus.Desc) {
	c.buildDuration.Describe(ch)
	c.graphsBuilt.Describe(ch)
	c.lastNodeCount.Describe(ch)
	c.lastEdgeCount.Describe(ch)
}

// Collect implements the prometheus.Collector interface Collect method.
func (c *GraphCollector) Collect(ch chan<- prometheus.Metric) {
	c.buildDuration.Collect(ch)
	c.graphsBuilt.Collect(ch)
	c.lastNodeCount.Collect(ch)
	c.lastEdgeCount.Collect(ch)
}

// GraphNoopCollector used to initialize the GraphRecorder when metrics are
// disabled to avoid nil pointer errors.
type GraphNoopCollector struct{}

// NewGraphNoopCollector returns an instance of the GraphNoopCollector.
func NewGraphNoopCollector() *GraphNoopCollector {
	return &GraphNoopCollector{}
}

func (c *GraphNoopCollector) ObserveGraphBuild(_ time.Duration, _, _ int) {}
