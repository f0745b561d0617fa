package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Batch scanner metrics
	ScanRowsScanned prometheus.Counter
	ScanCapReached  prometheus.Counter
	ScanBatches     prometheus.Counter

	// Database metrics
	DatabaseOperations *prometheus.CounterVec
	DatabaseLatency    *prometheus.HistogramVec

	// Domain operations
	CuposDeleted  prometheus.Counter
	DeleteRejects prometheus.Counter
	ExportRows    prometheus.Histogram

	// Catalog cache
	CacheLookups *prometheus.CounterVec
}

// NewMetrics creates all application metrics and registers them on reg.
// A nil reg falls back to the default registerer.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		ScanRowsScanned: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "rows_scanned_total",
			Help:      "Total number of slot rows examined by post-filter scans",
		}),
		ScanCapReached: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "cap_reached_total",
			Help:      "Number of scans that stopped at the scan cap with a partial result",
		}),
		ScanBatches: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "batches_total",
			Help:      "Total number of batches fetched by scans",
		}),

		DatabaseOperations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
		DatabaseLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "operation_duration_seconds",
			Help:      "Duration of database operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"operation"}),

		CuposDeleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cupos",
			Name:      "deleted_total",
			Help:      "Total number of unassigned slots deleted",
		}),
		DeleteRejects: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cupos",
			Name:      "delete_rejected_total",
			Help:      "Bulk delete requests rejected because of ineligible ids",
		}),
		ExportRows: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "rows",
			Help:      "Rows written per exported workbook",
			Buckets:   prometheus.ExponentialBuckets(10, 10, 6),
		}),

		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "cache_lookups_total",
			Help:      "Catalog cache lookups by result",
		}, []string{"catalog", "result"}),
	}
}

// ObserveDB records one database operation. Safe on a nil receiver.
func (m *Metrics) ObserveDB(operation string, seconds float64, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.DatabaseOperations.WithLabelValues(operation, status).Inc()
	m.DatabaseLatency.WithLabelValues(operation).Observe(seconds)
}

// ObserveScan records the outcome of one post-filter scan. Safe on a nil receiver.
func (m *Metrics) ObserveScan(scanned, batches int, capReached bool) {
	if m == nil {
		return
	}
	m.ScanRowsScanned.Add(float64(scanned))
	m.ScanBatches.Add(float64(batches))
	if capReached {
		m.ScanCapReached.Inc()
	}
}

// ObserveCache records a catalog cache hit or miss. Safe on a nil receiver.
func (m *Metrics) ObserveCache(catalog string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(catalog, result).Inc()
}
