package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trademaster_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trademaster_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	TurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trademaster_turns_total",
			Help: "Total number of processed conversation turns.",
		},
		[]string{"outcome"}, // replied, suppressed, error
	)

	IntentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trademaster_intents_total",
			Help: "Total number of classified intents.",
		},
		[]string{"intent", "source"}, // source: llm, fallback
	)

	HandlerErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trademaster_handler_errors_total",
			Help: "Total number of handler failures caught by dispatch.",
		},
		[]string{"intent"},
	)

	LLMCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trademaster_llm_calls_total",
			Help: "Total number of LLM completions attempted.",
		},
		[]string{"purpose", "status"}, // purpose: classify, gate, handler, synthesize
	)

	LLMCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trademaster_llm_call_duration_seconds",
			Help:    "LLM completion duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"purpose"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		TurnsTotal,
		IntentsTotal,
		HandlerErrorsTotal,
		LLMCallsTotal,
		LLMCallDuration,
	)
}
