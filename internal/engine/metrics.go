package engine

import "github.com/prometheus/client_golang/prometheus"

// Metric label values for request mode and outcome.
const (
	modeSymmetric  = "symmetric"
	modeAsymmetric = "asymmetric"

	outcomeOK            = "ok"
	outcomeError         = "error"
	outcomeTimeout       = "timeout"
	outcomeWorkerFailure = "worker_failure"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "squircle_engine_requests_total",
			Help: "Total number of outline generation requests processed by the engine.",
		},
		[]string{"mode", "outcome"},
	)

	fallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "squircle_engine_fallback_total",
			Help: "Number of requests served by synchronous fallback instead of the worker.",
		},
	)

	pendingRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "squircle_engine_pending_requests",
			Help: "Number of requests currently awaiting a worker response.",
		},
	)

	dispatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "squircle_engine_dispatch_seconds",
			Help:    "Time from request dispatch to delivered result, in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal)
	prometheus.MustRegister(fallbackTotal)
	prometheus.MustRegister(pendingRequests)
	prometheus.MustRegister(dispatchDuration)

	// Pre-initialize counter label combinations so they appear in /metrics
	// with value 0 from startup, rather than only after first observation.
	for _, mode := range []string{modeSymmetric, modeAsymmetric} {
		for _, outcome := range []string{outcomeOK, outcomeError, outcomeTimeout, outcomeWorkerFailure} {
			requestsTotal.WithLabelValues(mode, outcome)
		}
		dispatchDuration.WithLabelValues(mode)
	}
}
