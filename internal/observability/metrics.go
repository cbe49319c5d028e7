package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type moduleMetrics struct {
	encodeDuration prometheus.Histogram
	decodeDuration prometheus.Histogram

	storeOpsTotal    *prometheus.CounterVec
	storeOpDuration  *prometheus.HistogramVec
	dedupHitsTotal   prometheus.Counter
	integrityErrors  prometheus.Counter
	memoriesTotal    prometheus.Gauge
	reindexRunsTotal *prometheus.CounterVec
}

var (
	metricsOnce sync.Once
	metricsInst *moduleMetrics
	registry    *prometheus.Registry
)

func getMetrics() *moduleMetrics {
	metricsOnce.Do(func() {
		registry = prometheus.NewRegistry()
		metricsInst = &moduleMetrics{
			encodeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
				Name:    "codec_encode_duration_seconds",
				Help:    "Duration of codec encode operations in seconds",
				Buckets: prometheus.DefBuckets,
			}),
			decodeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
				Name:    "codec_decode_duration_seconds",
				Help:    "Duration of codec decode operations in seconds",
				Buckets: prometheus.DefBuckets,
			}),
			storeOpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "memstore_operations_total",
				Help: "Total number of memory store operations",
			}, []string{"operation", "status"}),
			storeOpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "memstore_operation_duration_seconds",
				Help:    "Duration of memory store operations in seconds",
				Buckets: prometheus.DefBuckets,
			}, []string{"operation"}),
			dedupHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "memstore_dedup_hits_total",
				Help: "Total number of stores resolved by content deduplication",
			}),
			integrityErrors: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "memstore_integrity_errors_total",
				Help: "Total number of fingerprint mismatches surfaced on decode",
			}),
			memoriesTotal: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "memstore_memories_total",
				Help: "Number of memories currently indexed",
			}),
			reindexRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "memstore_reindex_runs_total",
				Help: "Total number of storage directory reindex passes",
			}, []string{"status"}),
		}

		registry.MustRegister(
			metricsInst.encodeDuration,
			metricsInst.decodeDuration,
			metricsInst.storeOpsTotal,
			metricsInst.storeOpDuration,
			metricsInst.dedupHitsTotal,
			metricsInst.integrityErrors,
			metricsInst.memoriesTotal,
			metricsInst.reindexRunsTotal,
		)
	})
	return metricsInst
}

// EnsureRegistered forces metric registration; call it from package
// constructors so metrics exist before the first scrape.
func EnsureRegistered() {
	getMetrics()
}

// MetricsHandler returns an HTTP handler embedders can mount to expose the
// module's metrics.
func MetricsHandler() http.Handler {
	getMetrics()
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// RecordEncode observes one codec encode.
func RecordEncode(d time.Duration) {
	getMetrics().encodeDuration.Observe(d.Seconds())
}

// RecordDecode observes one codec decode.
func RecordDecode(d time.Duration) {
	getMetrics().decodeDuration.Observe(d.Seconds())
}

// RecordStoreOp observes one store operation.
func RecordStoreOp(operation string, d time.Duration, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	m := getMetrics()
	m.storeOpsTotal.WithLabelValues(operation, status).Inc()
	m.storeOpDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordDedupHit counts a store call resolved by content-hash lookup.
func RecordDedupHit() {
	getMetrics().dedupHitsTotal.Inc()
}

// RecordIntegrityError counts a surfaced fingerprint mismatch.
func RecordIntegrityError() {
	getMetrics().integrityErrors.Inc()
}

// SetMemoriesTotal sets the indexed memory gauge.
func SetMemoriesTotal(n int) {
	getMetrics().memoriesTotal.Set(float64(n))
}

// RecordReindex counts one reindex pass.
func RecordReindex(success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	getMetrics().reindexRunsTotal.WithLabelValues(status).Inc()
}
