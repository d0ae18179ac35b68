package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Authentication metrics
	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curelia_login_attempts_total",
			Help: "Total number of login attempts by outcome",
		},
		[]string{"outcome"},
	)

	AccountLockoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "curelia_account_lockouts_total",
			Help: "Total number of accounts locked after repeated failures",
		},
	)

	SessionExpiriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "curelia_session_expiries_total",
			Help: "Total number of requests rejected for idle-session timeout",
		},
	)

	// Authorization metrics
	AccessDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curelia_access_denials_total",
			Help: "Total number of authorization denials by reason",
		},
		[]string{"reason"},
	)

	// Audit ledger metrics
	AuditWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curelia_audit_writes_total",
			Help: "Total number of audit ledger writes by status",
		},
		[]string{"status"},
	)

	// AuditWriteFailuresTotal is the operational alert path for audit
	// entries that could not be persisted after retry.
	AuditWriteFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "curelia_audit_write_failures_total",
			Help: "Total number of audit writes that failed after retry",
		},
	)

	// HTTP metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "curelia_http_request_duration_seconds",
			Help:    "HTTP request latency by method and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)

	// Soft-delete metrics
	SoftDeletesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curelia_soft_deletes_total",
			Help: "Total number of soft deletes and restores by resource type",
		},
		[]string{"resource_type", "operation"},
	)
)
