package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// GenerationTotal counts generation requests by provider family and outcome.
	GenerationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "easel_generation_total",
			Help: "Total generation requests processed",
		},
		[]string{"provider", "outcome"},
	)

	// GenerationSeconds tracks end-to-end provider latency.
	GenerationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "easel_generation_seconds",
			Help:    "Provider dispatch latency in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		},
		[]string{"provider"},
	)

	// PlacementUnresolved counts placements that exhausted the spiral
	// search ceiling and accepted a residual overlap.
	PlacementUnresolved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "easel_placement_unresolved_total",
			Help: "Placements that hit the attempt ceiling still overlapping",
		},
	)

	// CanvasNodes gauges the current in-memory node count.
	CanvasNodes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "easel_canvas_nodes",
			Help: "Nodes currently on the canvas",
		},
	)
)

func init() {
	prometheus.MustRegister(GenerationTotal)
	prometheus.MustRegister(GenerationSeconds)
	prometheus.MustRegister(PlacementUnresolved)
	prometheus.MustRegister(CanvasNodes)
}
