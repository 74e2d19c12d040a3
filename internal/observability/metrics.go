package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce             sync.Once
	workflowSubmissionsTotal *prometheus.CounterVec
	workflowDecisionsTotal   *prometheus.CounterVec
	forbiddenReviewsTotal    *prometheus.CounterVec
	httpRequestsTotal        *prometheus.CounterVec
	httpLatencySeconds       *prometheus.HistogramVec
)

// RegisterMetrics initialises the Prometheus collectors for the workflow
// engine and its HTTP surface.
func RegisterMetrics() {
	registerOnce.Do(func() {
		workflowSubmissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "workflow_submissions_total",
			Help: "Workflow request submissions by kind and outcome.",
		}, []string{"kind", "outcome"})

		workflowDecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "workflow_decisions_total",
			Help: "Workflow decisions by kind, verdict and outcome.",
		}, []string{"kind", "verdict", "outcome"})

		forbiddenReviewsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "workflow_forbidden_reviews_total",
			Help: "Review attempts rejected by the authorization rules.",
		}, []string{"kind"})

		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests served by method, route and status.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_latency_seconds",
			Help:    "Latency distribution for HTTP requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		prometheus.MustRegister(
			workflowSubmissionsTotal,
			workflowDecisionsTotal,
			forbiddenReviewsTotal,
			httpRequestsTotal,
			httpLatencySeconds,
		)
	})
}

// WorkflowSubmissions exposes the submission counter.
func WorkflowSubmissions() *prometheus.CounterVec {
	RegisterMetrics()
	return workflowSubmissionsTotal
}

// WorkflowDecisions exposes the decision counter.
func WorkflowDecisions() *prometheus.CounterVec {
	RegisterMetrics()
	return workflowDecisionsTotal
}

// ForbiddenReviews exposes the counter for rejected review attempts.
func ForbiddenReviews() *prometheus.CounterVec {
	RegisterMetrics()
	return forbiddenReviewsTotal
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}
