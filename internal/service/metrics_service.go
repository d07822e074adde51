package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the Prometheus registry for HTTP, cache and allocation instrumentation.
// All methods are safe on a nil receiver so callers can run with metrics disabled.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Histogram
	cacheWrite      prometheus.Histogram
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter

	allocations        *prometheus.CounterVec
	allocationDuration *prometheus.HistogramVec
	seatsAssigned      *prometheus.CounterVec
	studentsUnassigned *prometheus.CounterVec
	rosterRows         *prometheus.CounterVec
	dutySessions       prometheus.Counter
	dutyShortfall      prometheus.Counter
	exportJobs         *prometheus.CounterVec

	cacheHitCount  uint64
	cacheMissCount uint64
}

// NewMetricsService registers all collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		cacheLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_latency_seconds",
			Help:    "Latency for cache lookups",
			Buckets: prometheus.DefBuckets,
		}),
		cacheWrite: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_write_seconds",
			Help:    "Latency for cache writes",
			Buckets: prometheus.DefBuckets,
		}),
		cacheHitRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cache_hit_ratio",
			Help: "Ratio of cache hits to total cache lookups",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total cache hits",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total cache misses",
		}),
		allocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seating_allocations_total",
			Help: "Seat allocations performed, by strategy",
		}, []string{"strategy"}),
		allocationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "seating_allocation_duration_seconds",
			Help:    "Time spent allocating and assembling seating plans",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"strategy"}),
		seatsAssigned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seating_students_assigned_total",
			Help: "Students placed into a seat",
		}, []string{"strategy"}),
		studentsUnassigned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seating_students_unassigned_total",
			Help: "Students left without a seat because capacity ran out",
		}, []string{"strategy"}),
		rosterRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_rows_total",
			Help: "Roster rows processed, by outcome",
		}, []string{"outcome"}),
		dutySessions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "duty_sessions_total",
			Help: "Exam sessions processed by the duty allocator",
		}),
		dutyShortfall: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "duty_shortfall_slots_total",
			Help: "Invigilator slots that could not be staffed",
		}),
		exportJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seating_export_jobs_total",
			Help: "Seating plan export jobs by format and terminal status",
		}, []string{"format", "status"}),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		m.requestDuration, m.requestTotal,
		m.cacheLatency, m.cacheWrite, m.cacheHitRatio, m.cacheHits, m.cacheMisses,
		m.allocations, m.allocationDuration, m.seatsAssigned, m.studentsUnassigned,
		m.rosterRows, m.dutySessions, m.dutyShortfall, m.exportJobs,
		goroutines,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
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

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request latency and count.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache lookup and refreshes the hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks cache write latency.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveAllocation records one seat allocation run.
func (m *MetricsService) ObserveAllocation(strategy string, assigned, unassigned int, duration time.Duration) {
	if m == nil {
		return
	}
	m.allocations.WithLabelValues(strategy).Inc()
	m.allocationDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	m.seatsAssigned.WithLabelValues(strategy).Add(float64(assigned))
	m.studentsUnassigned.WithLabelValues(strategy).Add(float64(unassigned))
}

// ObserveRoster records parsed and skipped roster rows.
func (m *MetricsService) ObserveRoster(parsed, skipped int) {
	if m == nil {
		return
	}
	m.rosterRows.WithLabelValues("parsed").Add(float64(parsed))
	m.rosterRows.WithLabelValues("skipped").Add(float64(skipped))
}

// ObserveDuties records a duty allocation run.
func (m *MetricsService) ObserveDuties(sessions, shortfall int) {
	if m == nil {
		return
	}
	m.dutySessions.Add(float64(sessions))
	m.dutyShortfall.Add(float64(shortfall))
}

// RecordExportJob counts an export job reaching a terminal status.
func (m *MetricsService) RecordExportJob(format, status string) {
	if m == nil {
		return
	}
	m.exportJobs.WithLabelValues(format, status).Inc()
}

// TrackQueueDepth exports the number of buffered jobs of a named queue as a gauge.
func (m *MetricsService) TrackQueueDepth(queue string, depth func() int) error {
	if m == nil || depth == nil {
		return nil
	}
	gauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "job_queue_depth",
		Help:        "Jobs waiting in an in-process queue",
		ConstLabels: prometheus.Labels{"queue": queue},
	}, func() float64 {
		return float64(depth())
	})
	if err := m.registry.Register(gauge); err != nil {
		return fmt.Errorf("register queue depth for %s: %w", queue, err)
	}
	return nil
}
