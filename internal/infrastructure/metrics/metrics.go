package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	TransactionsCreated  *prometheus.CounterVec
	DuplicatesSuppressed prometheus.Counter
	SubmissionErrors     *prometheus.CounterVec

	// Outbox metrics
	OutboxPublished     *prometheus.CounterVec
	OutboxPublishErrors *prometheus.CounterVec
	OutboxStaleEntries  *prometheus.GaugeVec
	OutboxDrainDuration *prometheus.HistogramVec

	// Enrichment metrics
	IdentityLookups  *prometheus.CounterVec
	IdentityDegraded prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics on the default
// registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates and registers all Prometheus metrics on the given
// registry.
func NewWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		TransactionsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "shardpay_transactions_created_total",
			Help: "Total number of transaction records created, by terminal status",
		}, []string{"status"}),
		DuplicatesSuppressed: f.NewCounter(prometheus.CounterOpts{
			Name: "shardpay_duplicates_suppressed_total",
			Help: "Total number of submissions answered with a prior record",
		}),
		SubmissionErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "shardpay_submission_errors_total",
			Help: "Total number of failed submissions, by error kind",
		}, []string{"kind"}),

		OutboxPublished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "shardpay_outbox_published_total",
			Help: "Total number of outbox entries acknowledged by the broker, by shard",
		}, []string{"shard"}),
		OutboxPublishErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "shardpay_outbox_publish_errors_total",
			Help: "Total number of failed publish attempts, by shard",
		}, []string{"shard"}),
		OutboxStaleEntries: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "shardpay_outbox_stale_entries",
			Help: "Unpublished outbox entries older than the staleness threshold, by shard",
		}, []string{"shard"}),
		OutboxDrainDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shardpay_outbox_drain_duration_seconds",
			Help:    "Duration of outbox drain cycles, by shard",
			Buckets: prometheus.DefBuckets,
		}, []string{"shard"}),

		IdentityLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "shardpay_identity_lookups_total",
			Help: "Total number of identity registry lookups, by outcome",
		}, []string{"outcome"}),
		IdentityDegraded: f.NewCounter(prometheus.CounterOpts{
			Name: "shardpay_identity_degraded_total",
			Help: "Total number of enriched reads served without identity data",
		}),

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "shardpay_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shardpay_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}
