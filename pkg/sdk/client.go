package prepscore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prepscore/internal/domain"
	geminiEmb "github.com/kailas-cloud/prepscore/internal/transport/gemini"
	"github.com/kailas-cloud/prepscore/internal/transport/languagetool"
	openaiEmb "github.com/kailas-cloud/prepscore/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/prepscore/internal/usecase/embedding"
	grammaruc "github.com/kailas-cloud/prepscore/internal/usecase/grammar"
	healthuc "github.com/kailas-cloud/prepscore/internal/usecase/health"
	"github.com/kailas-cloud/prepscore/internal/usecase/relevance"
	"github.com/kailas-cloud/prepscore/internal/usecase/scoring"
	usageuc "github.com/kailas-cloud/prepscore/internal/usecase/usage"
)

const (
	defaultLanguageTool     = "https://api.languagetool.org"
	defaultEmbeddingTimeout = 10 * time.Second
	defaultGrammarTimeout   = 5 * time.Second
)

// Internal interfaces for substitution in tests.
type scoringUseCase interface {
	Score(ctx context.Context, req domain.EvaluationRequest) (domain.CompositeScore, error)
}

type grammarUseCase interface {
	Check(ctx context.Context, text string) (domain.GrammarReport, error)
}

type similarityUseCase interface {
	Similarity(ctx context.Context, question, answer string) (float64, error)
}

// Client is the prepscore SDK entry point.
type Client struct {
	scoring   scoringUseCase
	grammar   grammarUseCase
	relevance similarityUseCase
	healthSvc healthUseCase
	usageSvc  usageUseCase
	obs       *observer

	mu      sync.Mutex
	closed  bool
	closers []func() error
}

// New creates a Client. The embedding model is initialized on the first
// evaluation, so New makes no network calls.
func New(_ context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		languageToolURL:  defaultLanguageTool,
		language:         "en-US",
		embeddingTimeout: defaultEmbeddingTimeout,
		grammarTimeout:   defaultGrammarTimeout,
	}
	for _, o := range opts {
		o.apply(cfg)
	}
	if (cfg.provider == "openai" || cfg.provider == "gemini") && cfg.model == "" {
		return nil, errors.New("prepscore: embedding model name required")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}
	return wireClient(cfg, obs), nil
}

func wireClient(cfg *clientConfig, obs *observer) *Client {
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{obs: obs}

	var checker grammaruc.Checker = cfg.grammar
	var grammarHealth healthuc.Checker
	if cfg.grammar == nil {
		lt := languagetool.NewClient(&languagetool.Config{
			BaseURL:  cfg.languageToolURL,
			Language: cfg.language,
			Logger:   logger,
		})
		checker = lt
		grammarHealth = lt
	}

	action := embeddinguc.BudgetActionWarn
	if cfg.rejectOverrun {
		action = embeddinguc.BudgetActionReject
	}
	budget := embeddinguc.NewBudget(cfg.provider, cfg.dailyTokens, cfg.monthlyTokens, action, logger)

	var model *relevance.ModelHandle
	if cfg.provider == "" {
		model = relevance.NewModelHandle(nil)
	} else {
		model = relevance.NewModelHandle(func(ctx context.Context) (domain.Embedder, error) {
			base, err := c.buildEmbedder(ctx, cfg, logger)
			if err != nil {
				return nil, err
			}
			return embeddinguc.NewInstrumentedEmbedder(base, cfg.provider, cfg.model, budget, logger), nil
		})
	}

	grammarSvc := grammaruc.New(checker, cfg.grammarTimeout, logger)
	relevanceSvc := relevance.New(model, cfg.embeddingTimeout, logger)

	c.scoring = scoring.New(relevanceSvc, grammarSvc, logger)
	c.grammar = grammarSvc
	c.relevance = relevanceSvc
	c.usageSvc = usageuc.New(budget)

	components := []healthuc.Component{{Name: "grammar", Checker: grammarHealth}}
	if cfg.provider != "" {
		components = append(components, healthuc.Component{Name: "embedding", Checker: model})
	}
	c.healthSvc = healthuc.New(components...)
	return c
}

func (c *Client) buildEmbedder(ctx context.Context, cfg *clientConfig, logger *zap.Logger) (domain.Embedder, error) {
	switch cfg.provider {
	case "gemini":
		g, err := geminiEmb.NewEmbedder(ctx, cfg.apiKey, cfg.model, logger)
		if err != nil {
			return nil, fmt.Errorf("prepscore: %w", err)
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			_ = g.Close()
			return nil, fmt.Errorf("prepscore: client closed: %w", domain.ErrCapabilityUnavailable)
		}
		c.closers = append(c.closers, g.Close)
		return g, nil
	case "openai":
		return openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:   cfg.apiKey,
			BaseURL:  cfg.baseURL,
			Model:    cfg.model,
			Provider: cfg.provider,
			Logger:   logger,
		}), nil
	default:
		if cfg.embedder == nil {
			return nil, fmt.Errorf("prepscore: %w", domain.ErrCapabilityUnavailable)
		}
		return adaptEmbedder(cfg.embedder), nil
	}
}

// Close releases provider clients. Safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for _, fn := range c.closers {
		_ = fn()
	}
}

// Evaluate scores an answer to a question. Only invalid input is an error:
// failing backends are reported in Score.Degraded.
func (c *Client) Evaluate(ctx context.Context, question, answer string) (score Score, err error) {
	start := time.Now()
	defer func() { c.obs.observeEvaluation(start, score, err) }()

	ctx, usage := domain.NewContextWithUsage(ctx)
	res, err := c.scoring.Score(ctx, domain.EvaluationRequest{Question: question, Answer: answer})
	if err != nil {
		return Score{}, fmt.Errorf("evaluate: %w", err)
	}

	tokens, _ := usage.Snapshot()
	return Score{
		Score:            res.Score,
		Relevance:        res.Relevance,
		GrammarErrorRate: res.GrammarErrorRate,
		Perfection:       res.Perfection,
		Degraded:         res.Degraded,
		EmbeddingTokens:  tokens,
	}, nil
}

// GrammarErrorRate returns grammar issues per hundred words of text.
func (c *Client) GrammarErrorRate(ctx context.Context, text string) (rate float64, err error) {
	start := time.Now()
	defer func() { c.obs.observe("grammar", start, err) }()

	report, err := c.grammar.Check(ctx, text)
	if err != nil {
		return 0, fmt.Errorf("grammar: %w", err)
	}
	return report.ErrorRate(), nil
}

// Relevance returns the cosine similarity of question and answer embeddings.
func (c *Client) Relevance(ctx context.Context, question, answer string) (sim float64, err error) {
	start := time.Now()
	defer func() { c.obs.observe("relevance", start, err) }()

	sim, err = c.relevance.Similarity(ctx, question, answer)
	if err != nil {
		return 0, fmt.Errorf("relevance: %w", err)
	}
	return sim, nil
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// batchEmbedderAdapter additionally forwards the native batch call.
type batchEmbedderAdapter struct {
	embedderAdapter
	batch BatchEmbedder
}

func (a *batchEmbedderAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	r, err := a.batch.BatchEmbed(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
	}
	return domain.BatchEmbeddingResult{
		Embeddings:   r.Embeddings,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

func adaptEmbedder(e Embedder) domain.Embedder {
	if b, ok := e.(BatchEmbedder); ok {
		return &batchEmbedderAdapter{embedderAdapter: embedderAdapter{inner: e}, batch: b}
	}
	return &embedderAdapter{inner: e}
}
