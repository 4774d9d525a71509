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

// Outcome labels shared by transport and store metrics.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

// MetricsSnapshot aggregates counters for log lines and the CLI stats output.
type MetricsSnapshot struct {
	TransportRequests       uint64
	TransportFailures       uint64
	AverageTransportMs      float64
	StoreActions            uint64
	StaleResponsesDiscarded uint64
	SnapshotHits            uint64
	SnapshotMisses          uint64
	SnapshotHitRatio        float64
	HTTPRequests            uint64
	AverageHTTPRequestMs    float64
	Goroutines              int
	GeneratedAt             time.Time
}

// MetricsService encapsulates Prometheus instrumentation for the catalog client and
// the reference API.
type MetricsService struct {
	registry          *prometheus.Registry
	handler           http.Handler
	transportDuration *prometheus.HistogramVec
	transportTotal    *prometheus.CounterVec
	storeActions      *prometheus.CounterVec
	staleResponses    *prometheus.CounterVec
	snapshotLatency   prometheus.Observer
	snapshotWrite     prometheus.Observer
	snapshotHitRatio  prometheus.Gauge
	snapshotHits      prometheus.Counter
	snapshotMisses    prometheus.Counter
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec

	transportCount         uint64
	transportFailureCount  uint64
	transportDurationTotal uint64
	storeActionCount       uint64
	staleCount             uint64
	snapshotHitCount       uint64
	snapshotMissCount      uint64
	requestCount           uint64
	requestDurationTotal   uint64
}

// NewMetricsService registers the catalog collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	transportDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_transport_request_duration_seconds",
		Help:    "Duration of remote catalog calls in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "outcome"})

	transportTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_transport_requests_total",
		Help: "Total number of remote catalog calls",
	}, []string{"operation", "outcome"})

	storeActions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_store_actions_total",
		Help: "Store actions by store, action and outcome",
	}, []string{"store", "action", "outcome"})

	staleResponses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_store_stale_responses_total",
		Help: "Responses discarded because a newer request for the same slice was issued",
	}, []string{"store", "slice"})

	snapshotLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_snapshot_read_seconds",
		Help:    "Latency for snapshot cache reads",
		Buckets: prometheus.DefBuckets,
	})

	snapshotWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_snapshot_write_seconds",
		Help:    "Latency for snapshot cache writes",
		Buckets: prometheus.DefBuckets,
	})

	snapshotHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_snapshot_hit_ratio",
		Help: "Ratio of snapshot hits to total snapshot lookups",
	})

	snapshotHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_snapshot_hits_total",
		Help: "Total snapshot cache hits",
	})

	snapshotMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_snapshot_misses_total",
		Help: "Total snapshot cache misses",
	})

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests served by the catalog API in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests served by the catalog API",
	}, []string{"method", "path", "status"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(transportDuration, transportTotal, storeActions, staleResponses,
		snapshotLatency, snapshotWrite, snapshotHitRatio, snapshotHits, snapshotMisses,
		requestDuration, requestTotal, goroutines)

	return &MetricsService{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		transportDuration: transportDuration,
		transportTotal:    transportTotal,
		storeActions:      storeActions,
		staleResponses:    staleResponses,
		snapshotLatency:   snapshotLatency,
		snapshotWrite:     snapshotWrite,
		snapshotHitRatio:  snapshotHitRatio,
		snapshotHits:      snapshotHits,
		snapshotMisses:    snapshotMisses,
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
	}
}

// Registry exposes the underlying registry for tests and embedding.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
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

// ObserveTransport records one remote catalog call.
func (m *MetricsService) ObserveTransport(operation string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
		atomic.AddUint64(&m.transportFailureCount, 1)
	}
	m.transportDuration.WithLabelValues(operation, outcome).Observe(duration.Seconds())
	m.transportTotal.WithLabelValues(operation, outcome).Inc()
	atomic.AddUint64(&m.transportCount, 1)
	atomic.AddUint64(&m.transportDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordStoreAction counts a settled store action.
func (m *MetricsService) RecordStoreAction(store, action, outcome string) {
	if m == nil {
		return
	}
	m.storeActions.WithLabelValues(store, action, outcome).Inc()
	atomic.AddUint64(&m.storeActionCount, 1)
}

// RecordStaleResponse counts a response dropped by the generation check.
func (m *MetricsService) RecordStaleResponse(store, slice string) {
	if m == nil {
		return
	}
	m.staleResponses.WithLabelValues(store, slice).Inc()
	atomic.AddUint64(&m.staleCount, 1)
}

// RecordSnapshotLookup records snapshot hit/miss metrics and updates the hit ratio.
func (m *MetricsService) RecordSnapshotLookup(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.snapshotLatency.Observe(duration.Seconds())
	if hit {
		m.snapshotHits.Inc()
		atomic.AddUint64(&m.snapshotHitCount, 1)
	} else {
		m.snapshotMisses.Inc()
		atomic.AddUint64(&m.snapshotMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.snapshotHitCount)
	misses := atomic.LoadUint64(&m.snapshotMissCount)
	if total := hits + misses; total > 0 {
		m.snapshotHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveSnapshotWrite tracks the duration of snapshot writes.
func (m *MetricsService) ObserveSnapshotWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.snapshotWrite.Observe(duration.Seconds())
}

// ObserveHTTPRequest records request metrics for the reference API.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// Snapshot returns aggregated counters.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	hits := atomic.LoadUint64(&m.snapshotHitCount)
	misses := atomic.LoadUint64(&m.snapshotMissCount)
	transport := atomic.LoadUint64(&m.transportCount)
	transportDur := atomic.LoadUint64(&m.transportDurationTotal)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDur := atomic.LoadUint64(&m.requestDurationTotal)

	snap := MetricsSnapshot{
		TransportRequests:       transport,
		TransportFailures:       atomic.LoadUint64(&m.transportFailureCount),
		StoreActions:            atomic.LoadUint64(&m.storeActionCount),
		StaleResponsesDiscarded: atomic.LoadUint64(&m.staleCount),
		SnapshotHits:            hits,
		SnapshotMisses:          misses,
		HTTPRequests:            requests,
		Goroutines:              runtime.NumGoroutine(),
		GeneratedAt:             time.Now().UTC(),
	}
	if total := hits + misses; total > 0 {
		snap.SnapshotHitRatio = float64(hits) / float64(total)
	}
	if transport > 0 {
		snap.AverageTransportMs = float64(transportDur) / float64(transport) / float64(time.Millisecond)
	}
	if requests > 0 {
		snap.AverageHTTPRequestMs = float64(reqDur) / float64(requests) / float64(time.Millisecond)
	}
	return snap
}
