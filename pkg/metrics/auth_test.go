package metrics

import (
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordOutcomes(t *testing.T) {
	m := New()

	m.RecordKerberosSuccess()
	m.RecordKerberosSuccess()
	m.RecordKerberosFailure()
	m.RecordSimpleSuccess()
	m.RecordSimpleRejected()

	s := m.Snapshot()
	assert.Equal(t, int64(2), s.KerberosSuccess)
	assert.Equal(t, int64(1), s.KerberosFailure)
	assert.Equal(t, int64(1), s.SimpleSuccess)
	assert.Equal(t, int64(1), s.SimpleRejected)
	assert.Equal(t, int64(3), s.TotalConnections, "total must equal kerberos+simple successes")
}

func TestKerberosPercentage(t *testing.T) {
	m := New()
	assert.Equal(t, 0.0, m.KerberosPercentage(), "empty counters yield 0")

	// Three kerberos successes, one simple success: 75%.
	m.RecordKerberosSuccess()
	m.RecordKerberosSuccess()
	m.RecordKerberosSuccess()
	m.RecordSimpleSuccess()
	assert.InDelta(t, 75.0, m.KerberosPercentage(), 1e-9)
}

func TestSnapshotIdempotent(t *testing.T) {
	m := New()
	m.RecordKerberosSuccess()
	m.RecordSimpleRejected()

	a := m.Snapshot()
	b := m.Snapshot()
	a.Timestamp = b.Timestamp
	assert.Equal(t, a, b, "snapshot without intervening updates must be stable")
}

func TestActiveConnections(t *testing.T) {
	m := New()
	m.ConnectionOpened()
	m.ConnectionOpened()
	m.ConnectionClosed()
	assert.Equal(t, int64(1), m.Snapshot().ActiveConnections)
}

func TestMigrationComplete(t *testing.T) {
	m := New()
	assert.False(t, m.MigrationComplete(), "no successes yet")

	m.RecordKerberosSuccess()
	assert.True(t, m.MigrationComplete())

	m.RecordSimpleSuccess()
	assert.False(t, m.MigrationComplete(), "simple success reopens the window")
}

func TestReset(t *testing.T) {
	m := New()
	m.ConnectionOpened()
	m.RecordKerberosSuccess()
	m.RecordSimpleRejected()

	m.Reset()

	s := m.Snapshot()
	assert.Zero(t, s.KerberosSuccess)
	assert.Zero(t, s.SimpleRejected)
	assert.Zero(t, s.TotalConnections)
	assert.Equal(t, int64(1), s.ActiveConnections, "reset must not touch active connections")
}

func TestSummaryFormat(t *testing.T) {
	m := New()
	m.RecordKerberosSuccess()
	m.RecordSimpleSuccess()

	sum := m.Summary()
	assert.True(t, strings.HasPrefix(sum, "AuthMetrics["), "summary = %q", sum)
	assert.Contains(t, sum, "kerberos%=50.00")
}

func TestNilReceiverIsNoOp(t *testing.T) {
	var m *AuthMetrics
	m.RecordKerberosSuccess()
	m.RecordSimpleRejected()
	m.ConnectionOpened()
	m.ConnectionClosed()
	m.Reset()
	assert.Equal(t, 0.0, m.KerberosPercentage())
	assert.False(t, m.MigrationComplete())
}

func TestConcurrentUpdates(t *testing.T) {
	m := New()

	const workers = 16
	const perWorker = 500

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				m.ConnectionOpened()
				m.RecordKerberosSuccess()
				m.RecordSimpleSuccess()
				m.ConnectionClosed()
			}
		}()
	}
	wg.Wait()

	s := m.Snapshot()
	assert.Equal(t, int64(workers*perWorker), s.KerberosSuccess)
	assert.Equal(t, int64(workers*perWorker), s.SimpleSuccess)
	assert.Equal(t, s.KerberosSuccess+s.SimpleSuccess, s.TotalConnections)
	assert.Zero(t, s.ActiveConnections)
	assert.InDelta(t, 50.0, s.KerberosPercentage, 1e-9)
}

func TestPrometheusMirror(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(WithPrometheus(reg))

	m.ConnectionOpened()
	m.RecordKerberosSuccess()
	m.RecordSimpleRejected()

	families, err := reg.Gather()
	require.NoError(t, err)

	byName := map[string]*dto.MetricFamily{}
	for _, f := range families {
		byName[f.GetName()] = f
	}

	require.Contains(t, byName, "saslgate_auth_results_total")
	require.Contains(t, byName, "saslgate_active_connections")
	require.Contains(t, byName, "saslgate_kerberos_ratio_percent")

	ratio := byName["saslgate_kerberos_ratio_percent"].GetMetric()[0].GetGauge().GetValue()
	assert.InDelta(t, 100.0, ratio, 1e-9)
}
