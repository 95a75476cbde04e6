package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	OwnershipMutations *prometheus.CounterVec
	ContentionRetries  prometheus.Counter
	AccountsCreated    prometheus.Counter
	RequestDuration    *prometheus.HistogramVec
}

// Mutation outcomes for the OwnershipMutations counter.
const (
	OutcomeAccepted   = "accepted"
	OutcomeRejected   = "rejected"
	OutcomeContention = "contention"
)

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		OwnershipMutations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rent_ownership_mutations_total",
			Help: "Ownership record mutations by outcome",
		}, []string{"outcome"}),
		ContentionRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rent_ownership_contention_retries_total",
			Help: "Serialization conflicts retried before giving up",
		}),
		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rent_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rent_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}
