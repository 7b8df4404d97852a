package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/leonardcser/kvcache/internal/storage"
)

func TestMetrics_ObserveOp(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveOp("get", true)
	m.ObserveOp("get", false)
	m.ObserveOp("get", false)

	require.Equal(t, float64(1), testutil.ToFloat64(m.Operations.WithLabelValues("get", "ok")))
	require.Equal(t, float64(2), testutil.ToFloat64(m.Operations.WithLabelValues("get", "fail")))
}

func TestMetrics_ObserveStats(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveStats(storage.Stats{Entries: 3, Size: 42, Capacity: 100, Evictions: 2})
	require.Equal(t, float64(42), testutil.ToFloat64(m.StoredBytes))
	require.Equal(t, float64(3), testutil.ToFloat64(m.StoredEntries))
	require.Equal(t, float64(2), testutil.ToFloat64(m.Evictions))

	// Only the delta is added.
	m.ObserveStats(storage.Stats{Entries: 1, Size: 10, Capacity: 100, Evictions: 5})
	require.Equal(t, float64(5), testutil.ToFloat64(m.Evictions))
	require.Equal(t, float64(10), testutil.ToFloat64(m.StoredBytes))
}

func TestMetrics_Registration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	require.NotNil(t, m)

	// Vec families only show up after first use.
	m.Operations.WithLabelValues("put", "ok").Add(0)

	metricFamilies, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, metricFamilies, 6)

	names := make(map[string]bool)
	for _, mf := range metricFamilies {
		names[mf.GetName()] = true
	}
	require.True(t, names["kvcache_operations_total"])
	require.True(t, names["kvcache_evictions_total"])
	require.True(t, names["kvcache_stored_bytes"])
	require.True(t, names["kvcache_stored_entries"])
	require.True(t, names["kvcache_active_workers"])
	require.True(t, names["kvcache_rejected_connections_total"])
}
