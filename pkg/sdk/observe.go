package prepscore

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Operation outcomes. An evaluation that fell back on any component is
// degraded rather than ok; only invalid input makes it an error.
const (
	outcomeOK       = "ok"
	outcomeDegraded = "degraded"
	outcomeError    = "error"
)

// sdkMetrics holds the prometheus collectors of one Client.
type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	degraded   *prometheus.CounterVec
	scores     prometheus.Histogram
	tokens     prometheus.Counter
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prepscore",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "SDK operations by type and outcome (ok, degraded, error).",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "prepscore",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		degraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prepscore",
			Subsystem: "sdk",
			Name:      "degraded_components_total",
			Help:      "Evaluations that fell back to a neutral sub-score, by component.",
		}, []string{"component"}),
		scores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "prepscore",
			Subsystem: "sdk",
			Name:      "composite_score",
			Help:      "Distribution of composite answer scores.",
			Buckets:   prometheus.LinearBuckets(0, 20, 7),
		}),
		tokens: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "prepscore",
			Subsystem: "sdk",
			Name:      "embedding_tokens_total",
			Help:      "Embedding tokens spent by evaluations.",
		}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.degraded); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.scores); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.tokens); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector, or adopts the one a previous Client
// registered under the same name.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("prepscore: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("prepscore: metric already registered with incompatible type: %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}

// observer records SDK operations. A nil observer is a no-op.
type observer struct {
	logger  *zap.Logger
	metrics *sdkMetrics
}

func newObserver(logger *zap.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

// observe records a scalar operation (relevance, grammar, usage).
func (o *observer) observe(op string, start time.Time, err error) {
	if o == nil {
		return
	}
	outcome := outcomeOK
	if err != nil {
		outcome = outcomeError
	}
	o.record(op, outcome, time.Since(start), err)
}

// observeEvaluation records one Evaluate call with its degraded components,
// composite score and embedding spend.
func (o *observer) observeEvaluation(start time.Time, score Score, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)

	switch {
	case err != nil:
		o.record("evaluate", outcomeError, dur, err)
		return
	case len(score.Degraded) > 0:
		o.record("evaluate", outcomeDegraded, dur, nil)
	default:
		o.record("evaluate", outcomeOK, dur, nil)
	}

	if o.metrics != nil {
		for _, component := range score.Degraded {
			o.metrics.degraded.WithLabelValues(component).Inc()
		}
		o.metrics.scores.Observe(score.Score)
		if score.EmbeddingTokens > 0 {
			o.metrics.tokens.Add(float64(score.EmbeddingTokens))
		}
	}

	if o.logger != nil && len(score.Degraded) > 0 {
		o.logger.Info("evaluation degraded",
			zap.Strings("components", score.Degraded),
			zap.Float64("score", score.Score),
		)
	}
}

func (o *observer) record(op, outcome string, dur time.Duration, err error) {
	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, outcome).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
	}
	if o.logger == nil {
		return
	}
	if err != nil {
		o.logger.Warn("operation failed",
			zap.String("op", op),
			zap.Duration("duration", dur),
			zap.Error(err),
		)
		return
	}
	o.logger.Debug("operation completed",
		zap.String("op", op),
		zap.String("outcome", outcome),
		zap.Duration("duration", dur),
	)
}
