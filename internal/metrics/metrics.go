package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "sweatstack_mcp"
)

// Registry holds every collector exported on /metrics.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// ToolCallsTotal counts tool invocations by outcome (ok or error).
	ToolCallsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Total number of MCP tool invocations",
		},
		[]string{"tool", "status"},
	)

	// ToolDuration tracks end-to-end tool latency, including API calls.
	ToolDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_duration_seconds",
			Help:      "Duration of MCP tool invocations in seconds",
			// 10ms to ~40s
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 13),
		},
		[]string{"tool"},
	)

	// APIRequestsTotal counts SweatStack API requests by HTTP status class.
	APIRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of SweatStack API requests",
		},
		[]string{"operation", "status"},
	)

	// APIRequestDuration tracks SweatStack API latency.
	APIRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Duration of SweatStack API requests in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 13),
		},
		[]string{"operation"},
	)

	// RateLimitWait tracks time spent waiting for the client-side rate limiter.
	RateLimitWait = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rate_limit_wait_seconds",
			Help:      "Time spent waiting for the SweatStack API rate limiter",
			// 1ms to ~4s
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 13),
		},
	)

	// CELFilterParseDuration tracks CEL filter compilation time.
	CELFilterParseDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cel_filter_parse_duration_seconds",
			Help:      "Duration of CEL filter parsing in seconds",
			// 100μs to ~100ms
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 11),
		},
	)

	// CELFilterErrors counts rejected CEL filters by reason.
	CELFilterErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cel_filter_errors_total",
			Help:      "Total number of CEL filter errors",
		},
		[]string{"error_type"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}
