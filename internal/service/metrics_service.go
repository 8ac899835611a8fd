package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pmolab/gpd-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the
// workflow core and the HTTP layer.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	decisionsTotal  *prometheus.CounterVec
	signaturesTotal *prometheus.CounterVec
	conflictsTotal  *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	decisionsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "approval_decisions_total",
		Help: "Total approval decisions recorded, by level and decision",
	}, []string{"level", "decision"})

	signaturesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "requirement_signatures_total",
		Help: "Total requirement signatures applied, by outcome",
	}, []string{"status"})

	conflictsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "workflow_conflicts_total",
		Help: "Optimistic-concurrency conflicts surfaced to callers",
	}, []string{"operation"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, decisionsTotal, signaturesTotal, conflictsTotal, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		decisionsTotal:  decisionsTotal,
		signaturesTotal: signaturesTotal,
		conflictsTotal:  conflictsTotal,
	}
}

// RegisterQueueDepth exposes a background queue's buffered depth as a
// gauge labelled with the queue name.
func (m *MetricsService) RegisterQueueDepth(name string, depth func() int) {
	if m == nil {
		return
	}
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "background_queue_depth",
		Help:        "Jobs waiting in a background queue buffer",
		ConstLabels: prometheus.Labels{"queue": name},
	}, func() float64 {
		return float64(depth())
	}))
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := []string{method, path, strconv.Itoa(status)}
	m.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(labels...).Inc()
}

// RecordDecision counts one recorded approval decision.
func (m *MetricsService) RecordDecision(level models.ApprovalLevel, decision models.ApprovalDecision) {
	if m == nil {
		return
	}
	m.decisionsTotal.WithLabelValues(string(level), string(decision)).Inc()
}

// RecordSignature counts one applied requirement signature.
func (m *MetricsService) RecordSignature(status models.SignatureStatus) {
	if m == nil {
		return
	}
	m.signaturesTotal.WithLabelValues(string(status)).Inc()
}

// RecordWorkflowConflict counts one optimistic-concurrency conflict.
func (m *MetricsService) RecordWorkflowConflict(operation string) {
	if m == nil {
		return
	}
	m.conflictsTotal.WithLabelValues(operation).Inc()
}
