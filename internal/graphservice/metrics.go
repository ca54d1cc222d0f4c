package graphservice

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	builds   *prometheus.CounterVec
	duration prometheus.Histogram
	nodes    prometheus.Gauge
	edges    prometheus.Gauge
	dropped  prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zettelgraph",
			Name:      "graph_builds_total",
			Help:      "Graph rebuilds by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "zettelgraph",
			Name:      "graph_build_duration_seconds",
			Help:      "Time spent reading records and building the graph.",
			Buckets:   prometheus.DefBuckets,
		}),
		nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "zettelgraph",
			Name:      "graph_nodes",
			Help:      "Nodes in the current graph.",
		}),
		edges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "zettelgraph",
			Name:      "graph_edges",
			Help:      "Directed edges between nodes of the current graph.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "zettelgraph",
			Name:      "records_dropped_total",
			Help:      "Records left out of a graph for a missing or duplicate identifier.",
		}),
	}
	reg.MustRegister(m.builds, m.duration, m.nodes, m.edges, m.dropped)
	return m
}
