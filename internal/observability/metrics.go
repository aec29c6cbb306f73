package observability

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/md-ibu786/AURA-PROTO-sub001/internal/platform/envutil"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/platform/logger"
)

// Metrics holds the service's Prometheus collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	kgBatches        *prometheus.CounterVec
	kgBatchDuration  prometheus.Histogram
	kgNotesDeleted   prometheus.Counter
	kgNotesFailed    *prometheus.CounterVec
	kgReconciles     *prometheus.CounterVec
	kgOrphansDeleted prometheus.Counter
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

func Current() *Metrics {
	return instance
}

// Init builds the process-wide collector when METRICS_ENABLED is set.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = NewMetrics()
		if log != nil {
			log.Info("prometheus metrics enabled")
		}
	})
	return instance
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aura_api_requests_total",
			Help: "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aura_api_request_duration_seconds",
			Help:    "API request latency in seconds by method/route/status.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"method", "route", "status"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aura_api_inflight_requests",
			Help: "In-flight API requests.",
		}),
		kgBatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aura_kg_delete_batches_total",
			Help: "Knowledge-graph delete batches by result (complete, partial, none).",
		}, []string{"result"}),
		kgBatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "aura_kg_delete_batch_duration_seconds",
			Help:    "Knowledge-graph delete batch duration in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		kgNotesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aura_kg_notes_deleted_total",
			Help: "Notes whose knowledge graph was deleted.",
		}),
		kgNotesFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aura_kg_notes_failed_total",
			Help: "Notes reported failed by a delete batch, by reason.",
		}, []string{"reason"}),
		kgReconciles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aura_kg_status_reconcile_total",
			Help: "kg_status reconciliation outcomes after graph deletion.",
		}, []string{"outcome"}),
		kgOrphansDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aura_kg_orphan_entities_deleted_total",
			Help: "Entities deleted by scoped orphan collection.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.kgBatches,
		m.kgBatchDuration,
		m.kgNotesDeleted,
		m.kgNotesFailed,
		m.kgReconciles,
		m.kgOrphansDeleted,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) BatchCompleted(deleted, failed int, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := "complete"
	switch {
	case deleted == 0 && failed > 0:
		result = "none"
	case failed > 0:
		result = "partial"
	}
	m.kgBatches.WithLabelValues(result).Inc()
	m.kgBatchDuration.Observe(elapsed.Seconds())
	m.kgNotesDeleted.Add(float64(deleted))
}

func (m *Metrics) NoteFailed(reason string) {
	if m == nil {
		return
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "unknown"
	}
	m.kgNotesFailed.WithLabelValues(reason).Inc()
}

func (m *Metrics) StatusReconciled(outcome string) {
	if m == nil {
		return
	}
	m.kgReconciles.WithLabelValues(outcome).Inc()
}

func (m *Metrics) OrphansDeleted(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.kgOrphansDeleted.Add(float64(n))
}
