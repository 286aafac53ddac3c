package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewJobsProcessedTotal returns a counter of finished job attempts labeled by queue and outcome
func NewJobsProcessedTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "queue_jobs_processed_total",
		Help: "Total number of processed job attempts",
	}, []string{"queue", "outcome"})
}

// NewJobDurationSeconds returns a histogram of job handler durations labeled by queue
func NewJobDurationSeconds() *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "queue_job_duration_seconds",
		Help:    "Duration of job handler runs",
		Buckets: prometheus.DefBuckets,
	}, []string{"queue"})
}

// NewJobsDeferredTotal returns a counter of jobs kept in memory because the broker was unreachable
func NewJobsDeferredTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "queue_jobs_deferred_total",
		Help: "Total number of jobs deferred while the broker was unavailable",
	})
}

// NewTransitionsTotal returns a counter of delivery lifecycle transitions labeled by event and result
func NewTransitionsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_transitions_total",
		Help: "Total number of delivery lifecycle transition attempts",
	}, []string{"event", "result"})
}

// NewHTTPRequestsTotal returns a counter of served HTTP requests labeled by method, route and status
func NewHTTPRequestsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
}

// NewHTTPRequestDuration returns a histogram of HTTP request durations labeled by method, route and status
func NewHTTPRequestDuration() *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
}
