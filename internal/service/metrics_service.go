package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	rollupHits      prometheus.Counter
	rollupMisses    prometheus.Counter
	submitTotal     prometheus.Counter
	exportTotal     *prometheus.CounterVec
}

// NewMetricsService registers the API's Prometheus collectors.
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

	rollupHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rollup_cache_hits_total",
		Help: "Total rollup cache hits",
	})

	rollupMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rollup_cache_misses_total",
		Help: "Total rollup cache misses",
	})

	submitTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "report_submissions_total",
		Help: "Total monthly report submissions",
	})

	exportTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "export_jobs_total",
		Help: "Total export jobs by terminal status",
	}, []string{"status"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, rollupHits, rollupMisses, submitTotal, exportTotal, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		rollupHits:      rollupHits,
		rollupMisses:    rollupMisses,
		submitTotal:     submitTotal,
		exportTotal:     exportTotal,
	}
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

// ObserveHTTPRequest records per-route request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordRollupLookup counts rollup cache hits and misses.
func (m *MetricsService) RecordRollupLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.rollupHits.Inc()
	} else {
		m.rollupMisses.Inc()
	}
}

// RecordSubmission counts a report submission.
func (m *MetricsService) RecordSubmission() {
	if m == nil {
		return
	}
	m.submitTotal.Inc()
}

// RecordExport counts a finished export job by terminal status.
func (m *MetricsService) RecordExport(status string) {
	if m == nil {
		return
	}
	m.exportTotal.WithLabelValues(status).Inc()
}
