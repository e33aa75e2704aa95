package prometheus

import (
	"fmt"
	"time"
)

// AppMetrics holds every metric the engine emits.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Reaction engine
	ValidationsTotal     CounterVec
	ValidationScore      HistogramVec
	TransformsTotal      CounterVec
	TransformDuration    HistogramVec
	AnalysisDuration     HistogramVec
	RepairWarningsTotal  CounterVec
	MoleculeAtomCount    HistogramVec
	EventsPublishedTotal CounterVec

	// Codec layer
	CodecParsesTotal CounterVec

	// Infrastructure
	DBQueryDuration  HistogramVec
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec

	// System health
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

// Default buckets
var (
	DefaultHTTPDurationBuckets   = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultEngineDurationBuckets = []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1}
	DefaultScoreBuckets          = []float64{0, 25, 50, 60, 70, 80, 90, 100}
	DefaultAtomCountBuckets      = []float64{1, 5, 10, 25, 50, 100, 250, 500}
	DefaultDBDurationBuckets     = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
)

// NewAppMetrics registers all engine metrics against collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// HTTP
	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method", "path")

	// Reaction engine
	m.ValidationsTotal = collector.RegisterCounter("validations_total", "Reaction validations", "category", "outcome")
	m.ValidationScore = collector.RegisterHistogram("validation_score", "Reaction verdict score", DefaultScoreBuckets, "category")
	m.TransformsTotal = collector.RegisterCounter("transforms_total", "Molecule rewrites", "category", "status")
	m.TransformDuration = collector.RegisterHistogram("transform_duration_seconds", "Molecule rewrite duration", DefaultEngineDurationBuckets, "category")
	m.AnalysisDuration = collector.RegisterHistogram("analysis_duration_seconds", "Molecule analysis duration", DefaultEngineDurationBuckets)
	m.RepairWarningsTotal = collector.RegisterCounter("repair_warnings_total", "Tolerant-read repairs during analysis", "kind")
	m.MoleculeAtomCount = collector.RegisterHistogram("molecule_atom_count", "Atoms per analyzed molecule", DefaultAtomCountBuckets)
	m.EventsPublishedTotal = collector.RegisterCounter("events_published_total", "Reaction events published", "topic", "status")

	// Codec
	m.CodecParsesTotal = collector.RegisterCounter("codec_parses_total", "Molecule format parses", "format", "status")

	// Infrastructure
	m.DBQueryDuration = collector.RegisterHistogram("db_query_duration_seconds", "Database query duration", DefaultDBDurationBuckets, "operation")
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")

	// System health
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_type")

	return m
}

// Helpers

// RecordHTTPRequest records one served HTTP request.
func RecordHTTPRequest(m *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, fmt.Sprintf("%d", statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordValidation records a verdict by category and outcome.
func RecordValidation(m *AppMetrics, category string, valid bool, score int) {
	outcome := "valid"
	if !valid {
		outcome = "invalid"
	}
	m.ValidationsTotal.WithLabelValues(category, outcome).Inc()
	m.ValidationScore.WithLabelValues(category).Observe(float64(score))
}

// RecordTransform records one rewrite attempt.
func RecordTransform(m *AppMetrics, category string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.TransformsTotal.WithLabelValues(category, status).Inc()
	m.TransformDuration.WithLabelValues(category).Observe(duration.Seconds())
}

// RecordCodecParse records one Parse call by format.
func RecordCodecParse(m *AppMetrics, format string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.CodecParsesTotal.WithLabelValues(format, status).Inc()
}

// RecordCacheAccess records a hit or a miss against the named cache.
func RecordCacheAccess(m *AppMetrics, cache string, hit bool) {
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		m.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

// RecordError counts one error for a component.
func RecordError(m *AppMetrics, component, errorType string) {
	m.ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
