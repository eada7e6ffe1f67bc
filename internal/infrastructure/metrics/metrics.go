package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Chat-API Metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chat",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "chat",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint"},
	)

	// Appended messages, by author role
	MessagesAppendedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chat",
			Subsystem: "api",
			Name:      "messages_appended_total",
			Help:      "Total messages written to conversations",
		},
		[]string{"role"},
	)

	// Responder call counters
	ResponderCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chat",
			Subsystem: "api",
			Name:      "responder_calls_total",
			Help:      "Total responder invocations",
		},
		[]string{"status"},
	)

	// Responder duration histogram
	ResponderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "chat",
			Subsystem: "api",
			Name:      "responder_duration_seconds",
			Help:      "Responder call duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	// Edit cascades counter
	EditCascadesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "chat",
			Subsystem: "api",
			Name:      "edit_cascades_total",
			Help:      "Total edit-and-regenerate cascades executed",
		},
	)

	// Messages removed by cascades
	CascadeDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "chat",
			Subsystem: "api",
			Name:      "cascade_deleted_messages_total",
			Help:      "Total downstream messages removed by edit cascades",
		},
	)

	// Share links issued
	SharesIssuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "chat",
			Subsystem: "api",
			Name:      "shares_issued_total",
			Help:      "Total share links minted",
		},
	)

	// Forks created from shared conversations
	ForksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "chat",
			Subsystem: "api",
			Name:      "forks_total",
			Help:      "Total conversations forked from share links",
		},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordMessageAppended records a message write
func RecordMessageAppended(fromAI bool) {
	role := "user"
	if fromAI {
		role = "ai"
	}
	MessagesAppendedTotal.WithLabelValues(role).Inc()
}

// RecordResponderCall records a responder invocation
func RecordResponderCall(status string, durationSec float64) {
	ResponderCallsTotal.WithLabelValues(status).Inc()
	ResponderDuration.Observe(durationSec)
}

// RecordEditCascade records an edit-and-regenerate cascade
func RecordEditCascade(deleted int) {
	EditCascadesTotal.Inc()
	CascadeDeletedTotal.Add(float64(deleted))
}
