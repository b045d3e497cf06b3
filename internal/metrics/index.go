package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Search index Prometheus metrics.
var (
	IndexOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docindex",
			Name:      "index_operations_total",
			Help:      "Total number of search index operations",
		},
		[]string{"kind", "op", "status"}, // op: put / delete / search / ensure
	)

	IndexOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docindex",
			Name:      "index_operation_duration_seconds",
			Help:      "Search index operation duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"kind", "op"},
	)

	SyncDispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docindex",
			Name:      "index_sync_dispatch_total",
			Help:      "Committed change sets pushed to the search index",
		},
		[]string{"status"},
	)

	ReindexDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docindex",
			Name:      "reindex_documents_total",
			Help:      "Documents written by full reindex runs",
		},
		[]string{"kind"},
	)
)

var indexMetricsRegistered bool

// RegisterIndexMetrics registers Prometheus index metrics. Must be called once from main.
func RegisterIndexMetrics() {
	if indexMetricsRegistered {
		return
	}
	prometheus.MustRegister(IndexOperationsTotal)
	prometheus.MustRegister(IndexOperationDuration)
	prometheus.MustRegister(SyncDispatchTotal)
	prometheus.MustRegister(ReindexDocumentsTotal)
	indexMetricsRegistered = true
}

// ObserveIndexOp records one index operation.
func ObserveIndexOp(kind, op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	IndexOperationsTotal.WithLabelValues(kind, op, status).Inc()
	IndexOperationDuration.WithLabelValues(kind, op).Observe(time.Since(start).Seconds())
}
