// Package metrics tracks authentication outcomes during the migration window.
//
// AuthMetrics is the shared handle written by every negotiation session and
// read by the monitoring side. It is constructed explicitly and injected
// (tests build a fresh instance per case); there is no package-level
// singleton. All counters are updated atomically and are safe for unbounded
// concurrent callers.
package metrics

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/marmos91/saslgate/internal/logger"
)

// AuthMetrics holds the migration counters.
//
// Six monotonic counters plus a derived Kerberos ratio computed on read.
// Invariant: totalConnections == kerberosSuccess + simpleSuccess after any
// completed update; each terminal outcome performs the increment pair as two
// independent atomic operations, so a reader between the two may observe the
// pair half-applied. That skew is acceptable for a monitoring signal.
//
// Methods handle a nil receiver gracefully, so a nil *AuthMetrics acts as a
// no-op sink when metrics are disabled.
type AuthMetrics struct {
	kerberosSuccess   atomic.Int64
	kerberosFailure   atomic.Int64
	simpleSuccess     atomic.Int64
	simpleRejected    atomic.Int64
	totalConnections  atomic.Int64
	activeConnections atomic.Int64

	prom *promMirror
}

// Option configures an AuthMetrics instance.
type Option func(*AuthMetrics)

// New creates an AuthMetrics handle.
func New(opts ...Option) *AuthMetrics {
	m := &AuthMetrics{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RecordKerberosSuccess records a completed Kerberos handshake.
func (m *AuthMetrics) RecordKerberosSuccess() {
	if m == nil {
		return
	}
	m.kerberosSuccess.Add(1)
	m.totalConnections.Add(1)
	m.prom.recordResult("kerberos", "success")
}

// RecordKerberosFailure records a failed Kerberos handshake attempt.
func (m *AuthMetrics) RecordKerberosFailure() {
	if m == nil {
		return
	}
	m.kerberosFailure.Add(1)
	m.prom.recordResult("kerberos", "failure")
}

// RecordSimpleSuccess records a completed simple-auth handshake.
func (m *AuthMetrics) RecordSimpleSuccess() {
	if m == nil {
		return
	}
	m.simpleSuccess.Add(1)
	m.totalConnections.Add(1)
	m.prom.recordResult("simple", "success")
}

// RecordSimpleRejected records a simple-auth attempt rejected by policy.
func (m *AuthMetrics) RecordSimpleRejected() {
	if m == nil {
		return
	}
	m.simpleRejected.Add(1)
	m.prom.recordResult("simple", "rejected")
}

// ConnectionOpened records a new negotiation session.
func (m *AuthMetrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.activeConnections.Add(1)
	m.prom.setActive(m.activeConnections.Load())
}

// ConnectionClosed records a session teardown.
func (m *AuthMetrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.activeConnections.Add(-1)
	m.prom.setActive(m.activeConnections.Load())
}

// KerberosPercentage returns the migration progress as
// 100 * kerberosSuccess / (kerberosSuccess + simpleSuccess),
// or 0 when no successful handshake has been recorded.
func (m *AuthMetrics) KerberosPercentage() float64 {
	if m == nil {
		return 0
	}
	kerberos := m.kerberosSuccess.Load()
	simple := m.simpleSuccess.Load()
	total := kerberos + simple
	if total == 0 {
		return 0
	}
	return float64(kerberos) * 100.0 / float64(total)
}

// MigrationComplete reports whether all successful handshakes so far have
// been Kerberos (at least one Kerberos success, zero simple successes).
func (m *AuthMetrics) MigrationComplete() bool {
	if m == nil {
		return false
	}
	return m.simpleSuccess.Load() == 0 && m.kerberosSuccess.Load() > 0
}

// Snapshot is an immutable view of the counters at a point in time.
type Snapshot struct {
	KerberosSuccess    int64
	KerberosFailure    int64
	SimpleSuccess      int64
	SimpleRejected     int64
	TotalConnections   int64
	ActiveConnections  int64
	KerberosPercentage float64
	Timestamp          time.Time
}

// Snapshot reads all counters without locking. Concurrent updates may skew
// the view by a single in-flight outcome; acceptable for monitoring, not
// for correctness-critical decisions.
func (m *AuthMetrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{Timestamp: time.Now()}
	}
	kerberos := m.kerberosSuccess.Load()
	simple := m.simpleSuccess.Load()

	s := Snapshot{
		KerberosSuccess:   kerberos,
		KerberosFailure:   m.kerberosFailure.Load(),
		SimpleSuccess:     simple,
		SimpleRejected:    m.simpleRejected.Load(),
		TotalConnections:  m.totalConnections.Load(),
		ActiveConnections: m.activeConnections.Load(),
		Timestamp:         time.Now(),
	}
	if total := kerberos + simple; total > 0 {
		s.KerberosPercentage = float64(kerberos) * 100.0 / float64(total)
	}
	return s
}

// Summary returns a formatted one-line view of the counters.
func (m *AuthMetrics) Summary() string {
	s := m.Snapshot()
	return fmt.Sprintf(
		"AuthMetrics[kerberos=%d/%d, simple=%d/%d, total=%d, active=%d, kerberos%%=%.2f]",
		s.KerberosSuccess, s.KerberosFailure,
		s.SimpleSuccess, s.SimpleRejected,
		s.TotalConnections, s.ActiveConnections,
		s.KerberosPercentage,
	)
}

// LogSummary emits the current counters as a structured log record.
// Intended for periodic migration progress reports.
func (m *AuthMetrics) LogSummary() {
	s := m.Snapshot()
	logger.Info("authentication summary",
		"kerberos_success", s.KerberosSuccess,
		"kerberos_failure", s.KerberosFailure,
		"simple_success", s.SimpleSuccess,
		"simple_rejected", s.SimpleRejected,
		"total_connections", s.TotalConnections,
		"active_connections", s.ActiveConnections,
		"kerberos_percentage", s.KerberosPercentage,
	)
}

// Reset zeroes the outcome counters. Primarily for test isolation; active
// connections are left alone since they track current state.
func (m *AuthMetrics) Reset() {
	if m == nil {
		return
	}
	m.kerberosSuccess.Store(0)
	m.kerberosFailure.Store(0)
	m.simpleSuccess.Store(0)
	m.simpleRejected.Store(0)
	m.totalConnections.Store(0)
}
