package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/leonardcser/kvcache/internal/storage"
)

// Metrics holds all Prometheus metrics for the cache daemon.
type Metrics struct {
	Operations          *prometheus.CounterVec
	Evictions           prometheus.Counter
	StoredBytes         prometheus.Gauge
	StoredEntries       prometheus.Gauge
	ActiveWorkers       prometheus.Gauge
	RejectedConnections prometheus.Counter

	lastEvictions uint64
}

// NewMetrics creates and registers all metrics with the provided registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kvcache_operations_total",
		Help: "Total storage operations by operation and result",
	}, []string{"op", "result"})

	evictions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kvcache_evictions_total",
		Help: "Total entries evicted to make room for writes",
	})

	storedBytes := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "kvcache_stored_bytes",
		Help: "Bytes of keys and values currently stored",
	})

	storedEntries := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "kvcache_stored_entries",
		Help: "Number of entries currently stored",
	})

	activeWorkers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "kvcache_active_workers",
		Help: "Connection workers currently running",
	})

	rejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kvcache_rejected_connections_total",
		Help: "Connections closed because every worker slot was busy",
	})

	reg.MustRegister(operations, evictions, storedBytes, storedEntries, activeWorkers, rejected)

	return &Metrics{
		Operations:          operations,
		Evictions:           evictions,
		StoredBytes:         storedBytes,
		StoredEntries:       storedEntries,
		ActiveWorkers:       activeWorkers,
		RejectedConnections: rejected,
	}
}

// ObserveOp counts one storage operation.
func (m *Metrics) ObserveOp(op string, ok bool) {
	result := "ok"
	if !ok {
		result = "fail"
	}
	m.Operations.WithLabelValues(op, result).Inc()
}

// ObserveStats updates the occupancy gauges and adds evictions seen since the
// previous call. Callers must serialize calls, typically under the store lock.
func (m *Metrics) ObserveStats(s storage.Stats) {
	m.StoredBytes.Set(float64(s.Size))
	m.StoredEntries.Set(float64(s.Entries))
	if s.Evictions > m.lastEvictions {
		m.Evictions.Add(float64(s.Evictions - m.lastEvictions))
	}
	m.lastEvictions = s.Evictions
}
