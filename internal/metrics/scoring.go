package metrics

import "github.com/prometheus/client_golang/prometheus"

// Answer scoring metrics.
var (
	EvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prepscore",
			Name:      "evaluations_total",
			Help:      "Composite answer evaluations by outcome",
		},
		[]string{"status"}, // "ok" / "degraded" / "invalid"
	)

	CompositeScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "prepscore",
			Name:      "composite_score",
			Help:      "Distribution of composite answer scores",
			Buckets:   []float64{60, 70, 80, 90, 100, 110, 120},
		},
	)

	ScorerFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prepscore",
			Name:      "scorer_fallbacks_total",
			Help:      "Sub-scorer results replaced by the neutral fallback",
		},
		[]string{"component", "reason"},
	)

	GrammarRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "prepscore",
			Name:      "grammar_request_duration_seconds",
			Help:      "Grammar service request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"status"},
	)
)

var scoringMetricsRegistered bool

// RegisterScoringMetrics registers answer scoring metrics. Must be called once from main.
func RegisterScoringMetrics() {
	if scoringMetricsRegistered {
		return
	}
	prometheus.MustRegister(EvaluationsTotal)
	prometheus.MustRegister(CompositeScore)
	prometheus.MustRegister(ScorerFallbacksTotal)
	prometheus.MustRegister(GrammarRequestDuration)
	scoringMetricsRegistered = true
}
