package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts requests by route pattern and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formzen_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration tracks request latency
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "formzen_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// GenerationsTotal counts generation calls by provider and outcome
	// (ok, config_error, upstream_error, parse_error, shape_error)
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formzen_generations_total",
			Help: "Total number of form generation attempts",
		},
		[]string{"provider", "outcome"},
	)

	// GenerationDuration tracks time spent waiting on the text generation service
	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "formzen_generation_duration_seconds",
			Help:    "Generation call duration in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"provider"},
	)

	// SubmissionsTotal counts submission attempts by outcome
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formzen_submissions_total",
			Help: "Total number of form submissions",
		},
		[]string{"outcome"},
	)

	// UploadsTotal counts attachment uploads by outcome
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formzen_uploads_total",
			Help: "Total number of attachment uploads",
		},
		[]string{"outcome"},
	)

	// UploadDuration tracks attachment upload latency
	UploadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "formzen_upload_duration_seconds",
			Help:    "Attachment upload duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)

	// WebhooksTotal counts billing webhook deliveries by event type and outcome
	WebhooksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formzen_billing_webhooks_total",
			Help: "Total number of billing webhook deliveries",
		},
		[]string{"event", "outcome"},
	)

	// CacheRequestsTotal counts cache lookups by result (hit, miss, error)
	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formzen_cache_requests_total",
			Help: "Total number of cache lookups",
		},
		[]string{"result"},
	)

	// IdentityMergesTotal counts anonymous-to-named account links
	IdentityMergesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "formzen_identity_merges_total",
			Help: "Total number of anonymous identities merged into named accounts",
		},
	)
)
