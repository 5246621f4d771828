package service

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/commune-chat/intent-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the
// detection pipeline and the HTTP surface.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	intentsDetected  *prometheus.CounterVec
	detectorLatency  prometheus.Histogram
	detectorFailures prometheus.Counter
	enrichFailures   prometheus.Counter
	fanoutRows       prometheus.Counter
	fanoutFailures   prometheus.Counter
	materializations prometheus.Counter
}

// NewMetricsService registers the pipeline collectors.
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

	intentsDetected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "intents_detected_total",
		Help: "Stored intents by type and provenance",
	}, []string{"intent_type", "detected_by"})

	detectorLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "detector_call_duration_seconds",
		Help:    "Latency of external detector calls",
		Buckets: prometheus.DefBuckets,
	})

	detectorFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "detector_failures_total",
		Help: "External detector calls that fell back to the regex path",
	})

	enrichFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "enrichment_failures_total",
		Help: "Non-fatal enrichment pass failures",
	})

	fanoutRows := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "admin_notifications_total",
		Help: "Admin notification rows written by the fan-out",
	})

	fanoutFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "admin_notification_failures_total",
		Help: "Admin notification rows that failed to insert",
	})

	materializations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "events_materialized_total",
		Help: "Calendar events created from confirmed intents",
	})

	registry.MustRegister(requestDuration, requestTotal, intentsDetected,
		detectorLatency, detectorFailures, enrichFailures,
		fanoutRows, fanoutFailures, materializations)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		intentsDetected:  intentsDetected,
		detectorLatency:  detectorLatency,
		detectorFailures: detectorFailures,
		enrichFailures:   enrichFailures,
		fanoutRows:       fanoutRows,
		fanoutFailures:   fanoutFailures,
		materializations: materializations,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one HTTP request observation.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if s == nil {
		return
	}
	labels := []string{method, path, fmt.Sprintf("%d", status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// RecordDetection counts one stored intent.
func (s *MetricsService) RecordDetection(intentType models.IntentType, detectedBy models.DetectedBy) {
	if s == nil {
		return
	}
	s.intentsDetected.WithLabelValues(string(intentType), string(detectedBy)).Inc()
}

// ObserveDetectorCall records the latency of one external detector call.
func (s *MetricsService) ObserveDetectorCall(duration time.Duration) {
	if s == nil {
		return
	}
	s.detectorLatency.Observe(duration.Seconds())
}

// RecordDetectorFailure counts a fall-through to the regex path.
func (s *MetricsService) RecordDetectorFailure() {
	if s == nil {
		return
	}
	s.detectorFailures.Inc()
}

// RecordEnrichmentFailure counts a non-fatal enrichment failure.
func (s *MetricsService) RecordEnrichmentFailure() {
	if s == nil {
		return
	}
	s.enrichFailures.Inc()
}

// RecordFanout counts fan-out rows written and failed.
func (s *MetricsService) RecordFanout(written, failed int) {
	if s == nil {
		return
	}
	s.fanoutRows.Add(float64(written))
	if failed > 0 {
		s.fanoutFailures.Add(float64(failed))
	}
}

// RecordMaterialization counts a calendar event creation.
func (s *MetricsService) RecordMaterialization() {
	if s == nil {
		return
	}
	s.materializations.Inc()
}
