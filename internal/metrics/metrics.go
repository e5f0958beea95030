package metrics

import "sync/atomic"

// MetricID identifies a single counter.
type MetricID uint8

const (
	MetricRegisterSuccess MetricID = iota
	MetricRegisterDuplicate
	MetricLoginSuccess
	MetricLoginFailure
	MetricRefreshSuccess
	MetricRefreshRevoked
	MetricRefreshFailure
	MetricLogout
	MetricAuthFailure
	MetricPermissionDenied
	MetricCacheHit
	MetricCacheMiss
	MetricCacheInvalidation
	MetricTaskCreated
	MetricTaskUpdated
	MetricTaskDeleted

	MetricIDCount
)

// Config controls whether counting is active at all.
type Config struct {
	Enabled bool
}

// Metrics holds one atomic counter per MetricID. When disabled, all
// operations are no-ops.
type Metrics struct {
	enabled  bool
	counters [MetricIDCount]atomic.Uint64
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Counters map[MetricID]uint64
}

func New(cfg Config) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc increments the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// Snapshot returns a copy of every counter value.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{Counters: make(map[MetricID]uint64, MetricIDCount)}
	if m == nil {
		return snap
	}
	for id := MetricID(0); id < MetricIDCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}
