// Package metrics exposes prometheus metrics for intake, verification and
// aggregation.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tallywatch"

// Metrics holds every collector of the service on its own registry. The
// recording methods are no-ops on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	submissionsTotal    *prometheus.CounterVec
	submissionConflicts *prometheus.CounterVec
	confidenceScore     *prometheus.HistogramVec
	resultsTotal        *prometheus.CounterVec
	anomaliesTotal      *prometheus.CounterVec
	reviewsTotal        *prometheus.CounterVec
	aggregationDuration *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() (*Metrics, error) {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_total",
		Help:      "Accepted submissions by type and location verification outcome",
	}, []string{"type", "location"})

	m.submissionConflicts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submission_conflicts_total",
		Help:      "Submissions refused with a business conflict",
	}, []string{"reason"})

	m.confidenceScore = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "confidence_score",
		Help:      "Distribution of computed confidence scores",
		Buckets:   prometheus.LinearBuckets(10, 10, 10),
	}, []string{"stage"})

	m.resultsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "results_total",
		Help:      "Recorded results by arithmetic validity",
	}, []string{"valid"})

	m.anomaliesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "anomalies_total",
		Help:      "Anomaly flags raised on recorded results",
	}, []string{"kind"})

	m.reviewsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reviews_total",
		Help:      "Reviewer status changes",
	}, []string{"status"})

	m.aggregationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "aggregation_duration_seconds",
		Help:      "Time taken to load and aggregate tallies",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	}, []string{"position", "level"})

	m.httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	m.httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	cs := []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.submissionsTotal,
		m.submissionConflicts,
		m.confidenceScore,
		m.resultsTotal,
		m.anomaliesTotal,
		m.reviewsTotal,
		m.aggregationDuration,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	}
	for _, c := range cs {
		if err := m.registry.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordSubmission counts an accepted submission and its intake score.
func (m *Metrics) RecordSubmission(kind string, locationChecked, locationVerified bool, score int) {
	if m == nil {
		return
	}
	location := "unchecked"
	switch {
	case locationVerified:
		location = "verified"
	case locationChecked:
		location = "outside_radius"
	}
	m.submissionsTotal.WithLabelValues(kind, location).Inc()
	m.confidenceScore.WithLabelValues("intake").Observe(float64(score))
}

// RecordConflict counts a refused submission.
func (m *Metrics) RecordConflict(reason string) {
	if m == nil {
		return
	}
	m.submissionConflicts.WithLabelValues(reason).Inc()
}

// RecordResult counts a recorded result, its anomaly kinds and the
// recomputed score.
func (m *Metrics) RecordResult(valid bool, anomalyKinds []string, score int) {
	if m == nil {
		return
	}
	m.resultsTotal.WithLabelValues(strconv.FormatBool(valid)).Inc()
	for _, kind := range anomalyKinds {
		m.anomaliesTotal.WithLabelValues(kind).Inc()
	}
	m.confidenceScore.WithLabelValues("result").Observe(float64(score))
}

// RecordReview counts a status change.
func (m *Metrics) RecordReview(status string) {
	if m == nil {
		return
	}
	m.reviewsTotal.WithLabelValues(status).Inc()
}

// ObserveAggregation records how long an aggregation took.
func (m *Metrics) ObserveAggregation(position, level string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.aggregationDuration.WithLabelValues(position, level).Observe(elapsed.Seconds())
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
