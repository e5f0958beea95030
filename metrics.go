package taskcore

import internalmetrics "github.com/taskcore/taskcore/internal/metrics"

// MetricID identifies a specific counter in the in-process metrics
// system.
type MetricID = internalmetrics.MetricID

const (
	MetricRegisterSuccess   = internalmetrics.MetricRegisterSuccess
	MetricRegisterDuplicate = internalmetrics.MetricRegisterDuplicate
	MetricLoginSuccess      = internalmetrics.MetricLoginSuccess
	MetricLoginFailure      = internalmetrics.MetricLoginFailure
	MetricRefreshSuccess    = internalmetrics.MetricRefreshSuccess
	MetricRefreshRevoked    = internalmetrics.MetricRefreshRevoked
	MetricRefreshFailure    = internalmetrics.MetricRefreshFailure
	MetricLogout            = internalmetrics.MetricLogout
	MetricAuthFailure       = internalmetrics.MetricAuthFailure
	MetricPermissionDenied  = internalmetrics.MetricPermissionDenied
	MetricCacheHit          = internalmetrics.MetricCacheHit
	MetricCacheMiss         = internalmetrics.MetricCacheMiss
	MetricCacheInvalidation = internalmetrics.MetricCacheInvalidation
	MetricTaskCreated       = internalmetrics.MetricTaskCreated
	MetricTaskUpdated       = internalmetrics.MetricTaskUpdated
	MetricTaskDeleted       = internalmetrics.MetricTaskDeleted
)

// Metrics holds the engine's atomic counters.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all counters.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a [Metrics] instance. When cfg.Enabled is false,
// all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{Enabled: cfg.Enabled})
}
