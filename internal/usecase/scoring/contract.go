package scoring

import (
	"context"

	"github.com/kailas-cloud/prepscore/internal/domain"
)

// RelevanceScorer returns semantic similarity of answer to question.
type RelevanceScorer interface {
	Score(ctx context.Context, question, answer string) domain.Outcome
}

// GrammarScorer returns the grammar error rate of text.
type GrammarScorer interface {
	Score(ctx context.Context, text string) domain.Outcome
}
