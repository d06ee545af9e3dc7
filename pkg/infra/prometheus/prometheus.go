package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	// Latency buckets in milliseconds
	latencyBuckets = []float64{
		5, 10, 25, // fast (5-25ms)
		50, 100, 250, // normal (50-250ms)
		500, 1000, 2500, // slow (500ms-2.5s)
		5000, 10000, 30000, // very slow/timeout (5s-30s)
	}

	VerdictsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaguard_verdicts_total",
			Help: "Moderation verdicts by media type and outcome",
		},
		[]string{"media_type", "verdict"},
	)

	RejectionsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaguard_rejections_total",
			Help: "Rejected verdicts by reason",
		},
		[]string{"reason"},
	)

	ClassifierLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediaguard_classifier_latency_ms",
			Help:    "External classifier call latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"media_type"},
	)

	// CircuitBreakerState: 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.With(registerer).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mediaguard_circuit_breaker_state",
			Help: "Circuit breaker state per protected dependency",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaguard_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions per protected dependency",
		},
		[]string{"name", "to"},
	)

	RequestsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaguard_requests_total",
			Help: "Total number of moderation requests processed",
		},
		[]string{"method", "status"},
	)

	CacheHitsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaguard_verdict_cache_hits_total",
			Help: "Verdict cache lookups by result",
		},
		[]string{"result"},
	)
)

// BreakerStateValue maps a gobreaker state name to its gauge value.
func BreakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}

func Initialize() {
	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry
}

// Handler exposes the registry for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
