// Package relevance scores how semantically close an answer is to its question.
package relevance

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
	ReasonModelUnavailable = "model_unavailable"
	ReasonTimeout          = "timeout"
	ReasonQuotaExceeded    = "quota_exceeded"
	ReasonProviderError    = "provider_error"
	ReasonDimMismatch      = "dimension_mismatch"
)

// Service embeds a question/answer pair and compares the vectors.
type Service struct {
	model   *ModelHandle
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a Service over an injected model handle.
func New(model *ModelHandle, timeout time.Duration, logger *zap.Logger) *Service {
	return &Service{model: model, timeout: timeout, logger: logger}
}

// Similarity returns the cosine similarity of question and answer embeddings.
func (s *Service) Similarity(ctx context.Context, question, answer string) (float64, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	model, err := s.model.Get(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrCapabilityUnavailable) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %w", domain.ErrCapabilityUnavailable, err)
	}

	res, err := domain.EmbedAll(ctx, model, []string{question, answer})
	if err != nil {
		return 0, fmt.Errorf("embed question and answer: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)

	if len(res.Embeddings) != 2 {
		return 0, fmt.Errorf("got %d embeddings for 2 inputs: %w", len(res.Embeddings), domain.ErrEmbeddingProviderError)
	}
	return Cosine(res.Embeddings[0], res.Embeddings[1])
}

// Score returns the similarity as an outcome. Failures yield value 0 and are
// never surfaced to the caller.
func (s *Service) Score(ctx context.Context, question, answer string) domain.Outcome {
	sim, err := s.Similarity(ctx, question, answer)
	if err == nil {
		return domain.Available(sim)
	}

	reason := fallbackReason(err)
	s.logger.Warn("Relevance scoring degraded",
		zap.String("reason", reason),
		zap.Error(err),
	)
	metrics.ScorerFallbacksTotal.WithLabelValues(domain.ComponentRelevance, reason).Inc()
	return domain.Unavailable(reason)
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, domain.ErrEmbeddingQuotaExceeded):
		return ReasonQuotaExceeded
	case errors.Is(err, domain.ErrVectorDimMismatch):
		return ReasonDimMismatch
	case errors.Is(err, domain.ErrCapabilityUnavailable):
		return ReasonModelUnavailable
	default:
		return ReasonProviderError
	}
}
