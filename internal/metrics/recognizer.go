package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recognizer Prometheus metrics.
var (
	RecognizerRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "specdex",
			Name:      "recognizer_requests_total",
			Help:      "Total number of recognizer requests",
		},
		[]string{"provider", "mode", "status"}, // mode: "query" / "document"
	)

	RecognizerRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "specdex",
			Name:      "recognizer_request_duration_seconds",
			Help:      "Recognizer request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"provider", "mode"},
	)

	RecognizerTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "specdex",
			Name:      "recognizer_tokens_total",
			Help:      "Total recognizer tokens consumed",
		},
		[]string{"provider", "type"},
	)

	RecognizerErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "specdex",
			Name:      "recognizer_errors_total",
			Help:      "Total recognizer errors",
		},
		[]string{"provider", "error_type"},
	)

	RecognizerSpansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "specdex",
			Name:      "recognizer_spans_total",
			Help:      "Total labeled spans returned by the recognizer",
		},
		[]string{"mode"},
	)
)

var recMetricsRegistered bool

// RegisterRecognizerMetrics registers Prometheus recognizer metrics. Must be called once from main.
func RegisterRecognizerMetrics() {
	if recMetricsRegistered {
		return
	}
	prometheus.MustRegister(RecognizerRequestsTotal)
	prometheus.MustRegister(RecognizerRequestDuration)
	prometheus.MustRegister(RecognizerTokensTotal)
	prometheus.MustRegister(RecognizerErrorsTotal)
	prometheus.MustRegister(RecognizerSpansTotal)
	recMetricsRegistered = true
}
