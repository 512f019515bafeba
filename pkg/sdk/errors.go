package prepscore

import "github.com/kailas-cloud/prepscore/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidInput           = domain.ErrInvalidInput
	ErrEmptyText              = domain.ErrEmptyText
	ErrCapabilityUnavailable  = domain.ErrCapabilityUnavailable
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrEmbeddingQuotaExceeded = domain.ErrEmbeddingQuotaExceeded
	ErrGrammarServiceError    = domain.ErrGrammarServiceError
)
