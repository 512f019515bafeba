// Package gemini serves sentence embeddings from the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/kailas-cloud/prepscore/internal/domain"
	"github.com/kailas-cloud/prepscore/internal/metrics"
)

const provider = "gemini"

// embeddingModel is the subset of the Gemini embedding API the embedder calls.
type embeddingModel interface {
	embedOne(ctx context.Context, text string) ([]float32, error)
	embedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type genaiModel struct {
	m *genai.EmbeddingModel
}

func (g genaiModel) embedOne(ctx context.Context, text string) ([]float32, error) {
	res, err := g.m.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, err
	}
	if res == nil || res.Embedding == nil {
		return nil, errors.New("empty embedding in response")
	}
	return res.Embedding.Values, nil
}

func (g genaiModel) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	b := g.m.NewBatch()
	for _, t := range texts {
		b.AddContent(genai.Text(t))
	}
	res, err := g.m.BatchEmbedContents(ctx, b)
	if err != nil {
		return nil, err
	}
	out := make([][]float32, len(res.Embeddings))
	for i, e := range res.Embeddings {
		if e == nil {
			return nil, fmt.Errorf("empty embedding at index %d", i)
		}
		out[i] = e.Values
	}
	return out, nil
}

// Embedder implements domain.Embedder and domain.BatchEmbedder on Gemini.
type Embedder struct {
	client *genai.Client
	model  embeddingModel
	name   string
	logger *zap.Logger
}

// NewEmbedder creates a Gemini embedding client for the named model.
func NewEmbedder(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Embedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	em := client.EmbeddingModel(model)
	em.TaskType = genai.TaskTypeSemanticSimilarity

	return &Embedder{
		client: client,
		model:  genaiModel{m: em},
		name:   model,
		logger: logger,
	}, nil
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	start := time.Now()
	vec, err := e.model.embedOne(ctx, text)
	if err != nil {
		e.recordError("api_error")
		return domain.EmbeddingResult{}, fmt.Errorf("gemini embed: %w: %w", err, domain.ErrEmbeddingProviderError)
	}
	e.recordSuccess(time.Since(start), 1)
	return domain.EmbeddingResult{Embedding: vec}, nil
}

// BatchEmbed implements domain.BatchEmbedder.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()
	vecs, err := e.model.embedBatch(ctx, texts)
	if err != nil {
		e.recordError("api_error")
		return domain.BatchEmbeddingResult{}, fmt.Errorf("gemini batch embed: %w: %w", err, domain.ErrEmbeddingProviderError)
	}
	if len(vecs) != len(texts) {
		e.recordError("count_mismatch")
		return domain.BatchEmbeddingResult{}, fmt.Errorf(
			"got %d embeddings for %d inputs: %w", len(vecs), len(texts), domain.ErrEmbeddingProviderError,
		)
	}
	e.recordSuccess(time.Since(start), len(texts))
	return domain.BatchEmbeddingResult{Embeddings: vecs}, nil
}

// HealthCheck embeds a short fixed string.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.model.embedOne(ctx, "ping"); err != nil {
		return fmt.Errorf("gemini health check: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (e *Embedder) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

func (e *Embedder) recordSuccess(d time.Duration, batch int) {
	metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.name, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(provider, e.name).Observe(d.Seconds())
	e.logger.Debug("Embedding request completed",
		zap.String("provider", provider),
		zap.String("model", e.name),
		zap.Int("batch_size", batch),
		zap.Duration("duration", d),
	)
}

func (e *Embedder) recordError(errorType string) {
	metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.name, "error").Inc()
	metrics.EmbeddingErrorsTotal.WithLabelValues(provider, e.name, errorType).Inc()
}
