package soundgraph

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// walksTotal counts walks by outcome: "complete", "terminal", "error".
	walksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soundgraph_walks_total",
		Help: "Total walks by outcome",
	}, []string{"outcome"})

	walkEvents = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "soundgraph_walk_events",
		Help:    "Events emitted per walk",
		Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128},
	})

	// mutationsTotal counts applied mutations: "edge_weight", "node_slot", "node_pitch".
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soundgraph_mutations_total",
		Help: "Total mutations applied by kind",
	}, []string{"kind"})
)
