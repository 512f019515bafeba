// Package scoring combines relevance, grammar and perfection into one score.
package scoring

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/prepscore/internal/domain"
	"github.com/kailas-cloud/prepscore/internal/metrics"
	"github.com/kailas-cloud/prepscore/internal/usecase/perfection"
)

// Weights of the composite formula.
const (
	RelevanceWeight  = 0.4
	GrammarWeight    = 0.3
	PerfectionWeight = 0.3
)

// Service scores candidate answers.
type Service struct {
	relevance RelevanceScorer
	grammar   GrammarScorer
	logger    *zap.Logger
}

// New creates a Service.
func New(relevance RelevanceScorer, grammar GrammarScorer, logger *zap.Logger) *Service {
	return &Service{relevance: relevance, grammar: grammar, logger: logger}
}

// Score validates req and returns its composite score. Sub-scorer failures
// degrade the result but never fail the call.
func (s *Service) Score(ctx context.Context, req domain.EvaluationRequest) (domain.CompositeScore, error) {
	if err := req.Validate(); err != nil {
		metrics.EvaluationsTotal.WithLabelValues("invalid").Inc()
		return domain.CompositeScore{}, err
	}

	var relevance, grammar domain.Outcome

	// Sub-scorers absorb their own failures, so the group never returns an error.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		relevance = s.relevance.Score(gctx, req.Question, req.Answer)
		return nil
	})
	g.Go(func() error {
		grammar = s.grammar.Score(gctx, req.Answer)
		return nil
	})
	bonus := perfection.Score(req.Answer, req.Question)
	_ = g.Wait()

	result := Combine(relevance, grammar, float64(bonus))

	status := "ok"
	if len(result.Degraded) > 0 {
		status = "degraded"
	}
	metrics.EvaluationsTotal.WithLabelValues(status).Inc()
	metrics.CompositeScore.Observe(result.Score)

	s.logger.Debug("Answer scored",
		zap.Float64("score", result.Score),
		zap.Float64("relevance", result.Relevance),
		zap.Float64("grammar_error_rate", result.GrammarErrorRate),
		zap.Float64("perfection", result.Perfection),
		zap.Strings("degraded", result.Degraded),
	)
	return result, nil
}

// Combine applies the composite formula. Unavailable outcomes contribute 0.
//
//	score = relevance*0.4 + (100 - grammarErrorRate*0.3) + perfection*0.3
//
// The grammar term is on a 0..100 scale while relevance is a ratio, so the
// grammar term dominates.
func Combine(relevance, grammar domain.Outcome, perfection float64) domain.CompositeScore {
	var degraded []string
	if !relevance.Available {
		degraded = append(degraded, domain.ComponentRelevance)
	}
	if !grammar.Available {
		degraded = append(degraded, domain.ComponentGrammar)
	}

	rel := relevance.Value
	if !relevance.Available {
		rel = 0
	}
	rate := grammar.Value
	if !grammar.Available {
		rate = 0
	}

	return domain.CompositeScore{
		Score:            rel*RelevanceWeight + (100 - rate*GrammarWeight) + perfection*PerfectionWeight,
		Relevance:        rel,
		GrammarErrorRate: rate,
		Perfection:       perfection,
		Degraded:         degraded,
	}
}
