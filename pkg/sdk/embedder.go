package prepscore

import "context"

// Embedder converts text to vector embeddings.
// Supply one with WithEmbedder to use a provider other than OpenAI or Gemini.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// BatchEmbedder vectorizes multiple texts in a single call.
// Optional: when the Embedder also implements it, question and answer are
// embedded in one request.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// BatchEmbeddingResult carries multiple embedding vectors and aggregate token usage.
type BatchEmbeddingResult struct {
	Embeddings   [][]float32
	PromptTokens int
	TotalTokens  int
}

// GrammarChecker counts grammar issues in text.
// Supply one with WithGrammarChecker to replace LanguageTool.
type GrammarChecker interface {
	Check(ctx context.Context, text string) (int, error)
}
