package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP server metrics, recorded by the HTTPMetrics middleware.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_http_requests_total",
		Help: "HTTP requests handled, by method, route and status.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_http_request_duration_seconds",
		Help:    "HTTP request latency, by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// Upstream call metrics, recorded by the upstream client.
	UpstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_upstream_requests_total",
		Help: "Upstream generateContent calls, by HTTP status.",
	}, []string{"status"})

	UpstreamErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_upstream_errors_total",
		Help: "Upstream call failures, by cause (network, read, api).",
	}, []string{"cause"})

	UpstreamLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gateway_upstream_latency_seconds",
		Help:    "Round-trip latency of upstream calls.",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
	})

	// AnalysisErrorsTotal counts classified gateway failures by error kind.
	AnalysisErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_analysis_errors_total",
		Help: "Classified analysis failures, by error kind.",
	}, []string{"kind"})
)
