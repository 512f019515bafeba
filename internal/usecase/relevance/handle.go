package relevance

import (
	"context"
	"fmt"
	"sync"

	"github.com/kailas-cloud/prepscore/internal/domain"
	"github.com/kailas-cloud/prepscore/internal/metrics"
)

// Loader initializes the embedding model.
type Loader func(ctx context.Context) (domain.Embedder, error)

// ModelHandle owns the process-wide embedding model. The first successful
// Get initializes it; afterwards it is shared read-only. A failed load is not
// cached and the next Get retries.
type ModelHandle struct {
	mu     sync.Mutex
	load   Loader
	model  domain.Embedder
	loaded bool
}

// NewModelHandle creates a handle that loads lazily through load.
func NewModelHandle(load Loader) *ModelHandle {
	return &ModelHandle{load: load}
}

// NewLoadedHandle wraps an already initialized model.
func NewLoadedHandle(model domain.Embedder) *ModelHandle {
	return &ModelHandle{model: model, loaded: true}
}

// Get returns the model, initializing it on first use.
func (h *ModelHandle) Get(ctx context.Context) (domain.Embedder, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.loaded {
		return h.model, nil
	}
	if h.load == nil {
		return nil, fmt.Errorf("no embedding model configured: %w", domain.ErrCapabilityUnavailable)
	}

	m, err := h.load(ctx)
	if err != nil {
		metrics.EmbeddingModelLoadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("load embedding model: %w", err)
	}
	if m == nil {
		metrics.EmbeddingModelLoadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("load embedding model: %w", domain.ErrCapabilityUnavailable)
	}
	metrics.EmbeddingModelLoadsTotal.WithLabelValues("success").Inc()

	h.model = m
	h.loaded = true
	return m, nil
}

// HealthCheck loads the model if needed and asks it for its own health.
func (h *ModelHandle) HealthCheck(ctx context.Context) error {
	m, err := h.Get(ctx)
	if err != nil {
		return err
	}
	if hc, ok := m.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}
