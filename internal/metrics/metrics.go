package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BatchesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "posterforge_batches_total",
		Help: "Total number of processed image batches, labelled by outcome.",
	}, []string{"outcome"})

	EventsExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "posterforge_events_extracted_total",
		Help: "Total number of calendar events detected across all batches.",
	})

	PostersGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "posterforge_posters_generated_total",
		Help: "Total number of per-event poster attempts, labelled by provider and status.",
	}, []string{"provider", "status"})

	LogosComposited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "posterforge_logos_composited_total",
		Help: "Total number of successful logo compositing operations.",
	})

	BatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "posterforge_batch_duration_seconds",
		Help:    "End-to-end batch processing latency in seconds.",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	})
)
