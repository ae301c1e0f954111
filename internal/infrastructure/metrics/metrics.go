package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	AccountsCreated     prometheus.Counter
	CreditsApplied      prometheus.Counter
	DebitsApplied       prometheus.Counter
	VersionConflicts    prometheus.Counter
	InsufficientBalance prometheus.Counter
	EventsAppended      prometheus.Counter
	SnapshotsWritten    prometheus.Counter

	// Forwarder metrics
	EventsForwarded prometheus.Counter
	PublishFailures prometheus.Counter
	FeedBacklog     prometheus.Gauge

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBConnections prometheus.Gauge
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tokenledger_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		CreditsApplied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tokenledger_credits_applied_total",
			Help: "Total number of credits applied",
		}),
		DebitsApplied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tokenledger_debits_applied_total",
			Help: "Total number of debits applied",
		}),
		VersionConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tokenledger_version_conflicts_total",
			Help: "Total number of appends rejected by a concurrent writer",
		}),
		InsufficientBalance: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tokenledger_insufficient_balance_total",
			Help: "Total number of debits rejected for insufficient balance",
		}),
		EventsAppended: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tokenledger_events_appended_total",
			Help: "Total number of events appended to the ledger",
		}),
		SnapshotsWritten: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tokenledger_snapshots_written_total",
			Help: "Total number of snapshot events written",
		}),

		EventsForwarded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tokenledger_events_forwarded_total",
			Help: "Total number of feed records republished to the bus",
		}),
		PublishFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tokenledger_publish_failures_total",
			Help: "Total number of feed batches that exhausted publish retries",
		}),
		FeedBacklog: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "tokenledger_feed_backlog",
			Help: "Feed records observed in the last poll that were not yet forwarded",
		}),

		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tokenledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tokenledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "tokenledger_db_connections",
			Help: "Current number of database connections",
		}),
	}
}
