package prepscore

import (
	"context"
	"sync/atomic"
)

// --- Embedder mocks ---

type mockEmbedder struct {
	fn    func(ctx context.Context, text string) (EmbeddingResult, error)
	calls atomic.Int32
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	m.calls.Add(1)
	return m.fn(ctx, text)
}

type mockBatchEmbedder struct {
	mockEmbedder
	batchCalls atomic.Int32
}

func (m *mockBatchEmbedder) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	m.batchCalls.Add(1)
	out := BatchEmbeddingResult{}
	for _, t := range texts {
		r, err := m.fn(ctx, t)
		if err != nil {
			return BatchEmbeddingResult{}, err
		}
		out.Embeddings = append(out.Embeddings, r.Embedding)
		out.TotalTokens += r.TotalTokens
	}
	return out, nil
}

// --- GrammarChecker mock ---

type mockGrammar struct {
	errors int
	err    error
}

func (m *mockGrammar) Check(_ context.Context, _ string) (int, error) {
	return m.errors, m.err
}

// --- helpers ---

// unitEmbedder returns the same vector for every text, so relevance is 1.
func unitEmbedder(tokens int) *mockEmbedder {
	return &mockEmbedder{
		fn: func(_ context.Context, _ string) (EmbeddingResult, error) {
			return EmbeddingResult{Embedding: []float32{1, 0}, TotalTokens: tokens}, nil
		},
	}
}
