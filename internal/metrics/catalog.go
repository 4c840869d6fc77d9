package metrics

import "github.com/prometheus/client_golang/prometheus"

// Catalog Prometheus metrics.
var (
	IngestDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "specdex",
			Name:      "ingest_documents_total",
			Help:      "Total ingested documents by outcome",
		},
		[]string{"status"},
	)

	IngestRunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "specdex",
			Name:      "ingest_run_duration_seconds",
			Help:      "Directory ingestion run duration in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
	)

	PredicateConstraints = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "specdex",
			Name:      "search_predicate_constraints",
			Help:      "Number of constraints in executed search predicates",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		},
		[]string{"origin"}, // "query" / "filter"
	)
)

var catalogMetricsRegistered bool

// RegisterCatalogMetrics registers Prometheus ingestion and search metrics. Must be called once from main.
func RegisterCatalogMetrics() {
	if catalogMetricsRegistered {
		return
	}
	prometheus.MustRegister(IngestDocumentsTotal)
	prometheus.MustRegister(IngestRunDuration)
	prometheus.MustRegister(PredicateConstraints)
	catalogMetricsRegistered = true
}
