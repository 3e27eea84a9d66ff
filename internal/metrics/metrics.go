package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Report ingestion metrics
	ReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netsentry_ingest_reports_total",
			Help: "Total number of detector reports received",
		},
		[]string{"status"},
	)

	IncidentsBySeverity = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netsentry_incidents_total",
			Help: "Total number of classified incidents",
		},
		[]string{"severity", "category"},
	)

	ThreatIPBatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "netsentry_threat_ip_batches_total",
			Help: "Total number of per-IP batch uploads processed",
		},
	)

	ThreatIPRowsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "netsentry_threat_ip_rows_total",
			Help: "Total number of per-IP rows upserted",
		},
	)

	// Alert metrics
	AlertsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netsentry_alerts_dispatched_total",
			Help: "Total number of alert dispatch attempts",
		},
		[]string{"outcome"},
	)

	// Classification metrics
	ClassificationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "netsentry_classification_duration_seconds",
			Help:    "Duration of report classification in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Storage metrics
	StorageErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "netsentry_storage_errors_total",
			Help: "Total number of storage errors",
		},
	)

	// Rate limiting metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netsentry_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"token"},
	)
)
