package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/prepscore/internal/config"
	"github.com/kailas-cloud/prepscore/internal/db"
	dbRedis "github.com/kailas-cloud/prepscore/internal/db/redis"
	"github.com/kailas-cloud/prepscore/internal/domain"
	logpkg "github.com/kailas-cloud/prepscore/internal/logger"
	"github.com/kailas-cloud/prepscore/internal/metrics"
	"github.com/kailas-cloud/prepscore/internal/repository/embcache"
	chiTransport "github.com/kailas-cloud/prepscore/internal/transport/chi"
	geminiEmb "github.com/kailas-cloud/prepscore/internal/transport/gemini"
	gen "github.com/kailas-cloud/prepscore/internal/transport/generated"
	"github.com/kailas-cloud/prepscore/internal/transport/languagetool"
	natsTransport "github.com/kailas-cloud/prepscore/internal/transport/nats"
	openaiTransport "github.com/kailas-cloud/prepscore/internal/transport/openai"
	"github.com/kailas-cloud/prepscore/internal/usecase/capture"
	embeddinguc "github.com/kailas-cloud/prepscore/internal/usecase/embedding"
	grammaruc "github.com/kailas-cloud/prepscore/internal/usecase/grammar"
	healthuc "github.com/kailas-cloud/prepscore/internal/usecase/health"
	"github.com/kailas-cloud/prepscore/internal/usecase/live"
	"github.com/kailas-cloud/prepscore/internal/usecase/relevance"
	"github.com/kailas-cloud/prepscore/internal/usecase/scoring"
	usageuc "github.com/kailas-cloud/prepscore/internal/usecase/usage"
	"github.com/kailas-cloud/prepscore/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting prepscore API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.Bool("speech", cfg.Speech.BaseURL != ""),
	)

	// Explicit registration, no init()
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterScoringMetrics()
	metrics.RegisterVoiceMetrics()

	ctx := context.Background()
	var health []healthuc.Component

	// Optional cache store: embedding vectors and budget counters
	var store *dbRedis.Store
	if len(cfg.Cache.Addrs) > 0 {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache store not ready", zap.Error(err))
		}
		health = append(health, healthuc.Component{Name: "cache", Checker: store})
		logger.Info("Connected to cache store", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	// Single budget shared by the embedder chain and the usage endpoint.
	budget := embeddinguc.NewBudget(
		cfg.Embedding.Provider,
		cfg.Embedding.Budget.DailyTokens,
		cfg.Embedding.Budget.MonthlyTokens,
		embeddinguc.BudgetAction(cfg.Embedding.Budget.Action),
		logger,
	)
	if store != nil {
		budget.WithStore(ctx, store)
	}

	// Embedding model is loaded on first use and retried after a failed load.
	loader := &embedderLoader{cfg: cfg.Embedding, budget: budget, logger: logger}
	if store != nil {
		loader.cache = store
		loader.cacheTTL = time.Duration(cfg.Cache.TTLHours) * time.Hour
	}
	model := relevance.NewModelHandle(loader.Load)
	defer loader.Close()
	health = append(health, healthuc.Component{Name: "embedding", Checker: model})

	grammarClient := languagetool.NewClient(&languagetool.Config{
		BaseURL:  cfg.Grammar.BaseURL,
		Language: cfg.Grammar.Language,
		Logger:   logger,
	})
	health = append(health, healthuc.Component{Name: "grammar", Checker: grammarClient})

	timeoutOf := func(sec int) time.Duration { return time.Duration(sec) * time.Second }
	scorer := scoring.New(
		relevance.New(model, timeoutOf(cfg.Embedding.TimeoutSec), logger),
		grammaruc.New(grammarClient, timeoutOf(cfg.Grammar.TimeoutSec), logger),
		logger,
	)

	// Live captures: speech engine and event sink are optional.
	var engines live.EngineFactory
	if cfg.Speech.BaseURL != "" {
		transcriber := openaiTransport.NewTranscriber(&openaiTransport.TranscriberConfig{
			APIKey:   cfg.Speech.APIKey,
			BaseURL:  cfg.Speech.BaseURL,
			Model:    cfg.Speech.Model,
			Language: cfg.Speech.Language,
			Logger:   logger,
		})
		window := timeoutOf(cfg.Speech.WindowSec)
		engines = func(frames <-chan []int16) capture.Engine {
			return transcriber.NewStreamRecognizer(frames, cfg.Voice.SampleRate, window)
		}
		health = append(health, healthuc.Component{Name: "speech", Checker: transcriber})
	}

	var publisher live.Publisher
	if cfg.Messaging.URL != "" {
		pub, err := natsTransport.Connect(cfg.Messaging.URL, cfg.Messaging.SubjectPrefix, logger)
		if err != nil {
			logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer func() { _ = pub.Close() }()
		publisher = pub
		health = append(health, healthuc.Component{Name: "messaging", Checker: pub})
	}

	captures := live.New(live.Config{
		SampleRate:     cfg.Voice.SampleRate,
		SampleInterval: time.Duration(cfg.Voice.SampleIntervalMs) * time.Millisecond,
	}, engines, publisher, logger)

	server := chiTransport.NewServer(
		scorer, captures, usageuc.New(budget), healthuc.New(health...), logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	gen.HandlerWithOptions(server, gen.ChiServerOptions{
		BaseRouter:       r,
		ErrorHandlerFunc: chiTransport.ParamErrorHandler,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	// Audio uploads lift ReadTimeout per request; headers stay bounded.
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	// Captures first: ending them closes open SSE streams so Shutdown can drain.
	if err := captures.Close(shutdownCtx); err != nil {
		logger.Error("Error closing captures", zap.Error(err))
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// embedderLoader builds the embedder chain: provider -> instrumented (budget + metrics) -> cache.
type embedderLoader struct {
	cfg      config.EmbeddingConfig
	budget   embeddinguc.BudgetChecker
	cache    db.Store
	cacheTTL time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	closers []func() error
}

func (l *embedderLoader) Load(ctx context.Context) (domain.Embedder, error) {
	var base domain.Embedder
	switch l.cfg.Provider {
	case "gemini":
		g, err := geminiEmb.NewEmbedder(ctx, l.cfg.APIKey, l.cfg.Model, l.logger)
		if err != nil {
			return nil, fmt.Errorf("load gemini embedder: %w", err)
		}
		l.mu.Lock()
		l.closers = append(l.closers, g.Close)
		l.mu.Unlock()
		base = g
	default:
		base = openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:     l.cfg.APIKey,
			BaseURL:    l.cfg.BaseURL,
			Model:      l.cfg.Model,
			Dimensions: l.cfg.Dimensions,
			Provider:   l.cfg.Provider,
			Logger:     l.logger,
		})
	}

	var embedder domain.Embedder = embeddinguc.NewInstrumentedEmbedder(
		base, l.cfg.Provider, l.cfg.Model, l.budget, l.logger,
	)

	// Cache outermost: hits spend no tokens and skip the budget check.
	if l.cache != nil {
		embedder = embcache.New(embedder, l.cache, l.cfg.Model, l.cacheTTL, metrics.EmbeddingCacheTotal, l.logger)
	}

	l.logger.Info("Embedding model loaded",
		zap.String("provider", l.cfg.Provider),
		zap.String("model", l.cfg.Model),
	)
	return embedder, nil
}

func (l *embedderLoader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, c := range l.closers {
		if err := c(); err != nil {
			l.logger.Warn("Failed to close embedder", zap.Error(err))
		}
	}
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(gen.ErrorResponse{
						Code:    gen.ErrorResponseCodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			// The wrapper keeps http.Flusher for the SSE route.
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
