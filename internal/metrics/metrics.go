package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sync operation counters and histograms, partitioned by operation + network.

var (
	// Sync service
	SyncOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "walletsync",
		Subsystem: "service",
		Name:      "operations_total",
		Help:      "Total sync operations executed",
	}, []string{"operation", "network"})

	SyncOpErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "walletsync",
		Subsystem: "service",
		Name:      "operation_errors_total",
		Help:      "Total sync operations that failed",
	}, []string{"operation", "network"})

	SyncOpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "walletsync",
		Subsystem: "service",
		Name:      "operation_duration_seconds",
		Help:      "Sync operation duration",
		Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"operation", "network"})

	TokensDiscovered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "walletsync",
		Subsystem: "service",
		Name:      "tokens_discovered_total",
		Help:      "Total new tokens discovered during balance fetches",
	}, []string{"network"})

	SnapshotsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "walletsync",
		Subsystem: "service",
		Name:      "snapshots_published_total",
		Help:      "Total balance snapshots published to the store",
	}, []string{"network"})

	// Debouncer
	DebounceRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "walletsync",
		Subsystem: "debounce",
		Name:      "requests_total",
		Help:      "Total requests entering the coalescing window",
	}, []string{"operation"})

	DebounceCoalesced = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "walletsync",
		Subsystem: "debounce",
		Name:      "coalesced_total",
		Help:      "Total requests absorbed by an already-open window",
	}, []string{"operation"})

	DebounceExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "walletsync",
		Subsystem: "debounce",
		Name:      "executions_total",
		Help:      "Total trailing-edge executions",
	}, []string{"operation"})

	// Vault
	VaultCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "walletsync",
		Subsystem: "vault",
		Name:      "calls_total",
		Help:      "Total vault capability calls",
	}, []string{"network", "method", "status"})

	VaultCallLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "walletsync",
		Subsystem: "vault",
		Name:      "call_duration_seconds",
		Help:      "Vault capability call duration",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"network", "method"})

	VaultRateLimitWaits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "walletsync",
		Subsystem: "vault",
		Name:      "rate_limit_waits_total",
		Help:      "Total vault calls delayed by the rate limiter",
	}, []string{"network"})

	VaultBreakerRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "walletsync",
		Subsystem: "vault",
		Name:      "breaker_rejections_total",
		Help:      "Total vault calls rejected by an open circuit breaker",
	}, []string{"network"})

	// Snapshot mirror
	MirrorPublishErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "walletsync",
		Subsystem: "mirror",
		Name:      "publish_errors_total",
		Help:      "Total snapshot mirror publish failures",
	}, []string{"network"})
)
