// Package metrics exposes Prometheus counters and histograms for
// pipeline stage outcomes, rate-limiter rejections, and RPC call
// latency. Non-goals on confirmation tracking do not exclude basic
// operational observability of the stages the pipeline itself runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SubmissionsTotal counts terminal pipeline outcomes by status.
	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "relayer",
		Name:      "submissions_total",
		Help:      "Total authorization submissions by terminal status.",
	}, []string{"status"})

	// RateLimitRejectionsTotal counts submissions rejected by the rate limiter.
	RateLimitRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "relayer",
		Name:      "rate_limit_rejections_total",
		Help:      "Total submissions rejected before reservation by the rate limiter.",
	})

	// RPCCallDuration observes latency of outbound JSON-RPC calls by method.
	RPCCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "relayer",
		Name:      "rpc_call_duration_seconds",
		Help:      "Latency of outbound JSON-RPC calls.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	// RPCErrorsTotal counts JSON-RPC and transport errors by kind.
	RPCErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "relayer",
		Name:      "rpc_errors_total",
		Help:      "Total JSON-RPC and transport errors by kind.",
	}, []string{"kind"})
)
