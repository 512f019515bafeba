package prepscore

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	provider string // "openai", "gemini" or "custom"
	apiKey   string
	baseURL  string
	model    string
	embedder Embedder

	languageToolURL string
	language        string
	grammar         GrammarChecker

	dailyTokens   int64
	monthlyTokens int64
	rejectOverrun bool

	embeddingTimeout time.Duration
	grammarTimeout   time.Duration

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithOpenAI embeds through an OpenAI-compatible /embeddings endpoint.
func WithOpenAI(apiKey, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.provider = "openai"
		c.apiKey = apiKey
		c.model = model
	})
}

// WithOpenAIBaseURL points the OpenAI provider at a compatible server.
func WithOpenAIBaseURL(baseURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.baseURL = baseURL
	})
}

// WithGemini embeds through Google Gemini.
func WithGemini(apiKey, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.provider = "gemini"
		c.apiKey = apiKey
		c.model = model
	})
}

// WithEmbedder sets a caller-provided embedding model.
// Without any embedder relevance degrades to 0.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.provider = "custom"
		c.embedder = e
	})
}

// WithLanguageTool sets the LanguageTool server. Default: the public API.
func WithLanguageTool(baseURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.languageToolURL = baseURL
	})
}

// WithGrammarChecker replaces LanguageTool with a caller-provided checker.
func WithGrammarChecker(g GrammarChecker) Option {
	return optionFunc(func(c *clientConfig) {
		c.grammar = g
	})
}

// WithTokenBudget caps embedding tokens per day and month (0 = unlimited).
// With reject set, evaluations over budget score relevance as degraded
// instead of calling the provider.
func WithTokenBudget(daily, monthly int64, reject bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.dailyTokens = daily
		c.monthlyTokens = monthly
		c.rejectOverrun = reject
	})
}

// WithTimeouts bounds the embedding and grammar calls.
// Defaults: 10s and 5s.
func WithTimeouts(embedding, grammar time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.embeddingTimeout = embedding
		c.grammarTimeout = grammar
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
