package metrics

import "github.com/prometheus/client_golang/prometheus"

// Ingestion, retrieval and generation metrics.
var (
	IngestionJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingestion_jobs_total",
			Help:      "Ingestion jobs by terminal status and detected format",
		},
		[]string{"status", "format"},
	)

	IngestionStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingestion_stage_duration_seconds",
			Help:      "Duration of each ingestion stage",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"stage"},
	)

	IngestionInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ingestion_jobs_in_flight",
			Help:      "Ingestion jobs currently running",
		},
	)

	ChunksIndexedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_indexed_total",
			Help:      "Chunks written to the vector store",
		},
	)

	RetrievalResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_results",
			Help:      "Results returned per retrieval",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20},
		},
		[]string{"mode"},
	)

	RetrievalDegradedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_degraded_total",
			Help:      "Requests answered without context because retrieval or web search failed",
		},
		[]string{"mode", "source"},
	)

	GenerationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Language model call duration",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"mode", "status"},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers ingestion, retrieval and generation metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(
		IngestionJobsTotal,
		IngestionStageDuration,
		IngestionInFlight,
		ChunksIndexedTotal,
		RetrievalResults,
		RetrievalDegradedTotal,
		GenerationDuration,
	)
	pipelineMetricsRegistered = true
}
