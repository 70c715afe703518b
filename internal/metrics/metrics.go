package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "museobot",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	chatTurns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "museobot",
			Name:      "chat_turns_total",
			Help:      "Conversation turns by step.",
		},
		[]string{"step"},
	)

	submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "museobot",
			Name:      "booking_submissions_total",
			Help:      "Booking submissions by outcome (created, rejected, capacity, failed).",
		},
		[]string{"outcome"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, chatTurns, submissions)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncChatTurn increments the counter for a conversation step.
func IncChatTurn(step string) {
	chatTurns.WithLabelValues(step).Inc()
}

// IncSubmission increments the counter for a submission outcome.
func IncSubmission(outcome string) {
	submissions.WithLabelValues(outcome).Inc()
}
