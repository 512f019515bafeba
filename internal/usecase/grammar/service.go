// Package grammar scores an answer by its grammar error rate.
package grammar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prepscore/internal/domain"
	"github.com/kailas-cloud/prepscore/internal/metrics"
)

// Fallback reasons.
const (
	ReasonEmptyText    = "empty_text"
	ReasonTimeout      = "timeout"
	ReasonServiceError = "service_error"
)

// Service wraps the grammar checker with a timeout and a neutral fallback.
type Service struct {
	checker Checker
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a Service. A zero timeout leaves calls bounded only by ctx.
func New(checker Checker, timeout time.Duration, logger *zap.Logger) *Service {
	return &Service{checker: checker, timeout: timeout, logger: logger}
}

// Check returns the grammar report for text. Blank text fails before any I/O.
func (s *Service) Check(ctx context.Context, text string) (domain.GrammarReport, error) {
	if domain.CountWords(text) == 0 {
		return domain.GrammarReport{}, domain.ErrEmptyText
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	n, err := s.checker.Check(ctx, text)
	if err != nil {
		return domain.GrammarReport{}, fmt.Errorf("grammar check: %w", err)
	}
	return domain.NewGrammarReport(text, n)
}

// Score returns the error rate (errors per hundred words). Any failure yields
// an unavailable outcome with value 0.
func (s *Service) Score(ctx context.Context, text string) domain.Outcome {
	report, err := s.Check(ctx, text)
	if err == nil {
		return domain.Available(report.ErrorRate())
	}

	reason := ReasonServiceError
	switch {
	case errors.Is(err, domain.ErrEmptyText):
		reason = ReasonEmptyText
	case errors.Is(err, context.DeadlineExceeded):
		reason = ReasonTimeout
	}

	s.logger.Warn("Grammar scoring degraded",
		zap.String("reason", reason),
		zap.Int("text_length", len(text)),
		zap.Error(err),
	)
	metrics.ScorerFallbacksTotal.WithLabelValues(domain.ComponentGrammar, reason).Inc()
	return domain.Unavailable(reason)
}
