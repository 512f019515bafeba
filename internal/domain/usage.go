package domain

import (
	"context"
	"sync"
	"time"
)

type embeddingUsageKey struct{}

// EmbeddingUsage collects embedding token usage for one HTTP request.
// The handler puts a pointer into the context, scorers add to it, and the
// handler reports it in response headers.
type EmbeddingUsage struct {
	mu          sync.Mutex
	totalTokens int
	used        bool
}

// NewContextWithUsage returns a context carrying a fresh usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *EmbeddingUsage) {
	u := &EmbeddingUsage{}
	return context.WithValue(ctx, embeddingUsageKey{}, u), u
}

// UsageFromContext returns the collector, or nil if none was installed.
func UsageFromContext(ctx context.Context) *EmbeddingUsage {
	u, _ := ctx.Value(embeddingUsageKey{}).(*EmbeddingUsage)
	return u
}

// AddTokens records consumed tokens. Safe on a nil receiver.
func (u *EmbeddingUsage) AddTokens(n int) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.totalTokens += n
	u.used = true
	u.mu.Unlock()
}

// Snapshot returns the total tokens and whether embedding was called at all
// (a cache hit counts as used with zero tokens).
func (u *EmbeddingUsage) Snapshot() (tokens int, used bool) {
	if u == nil {
		return 0, false
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.totalTokens, u.used
}

// BudgetPeriod is a token budget accounting window.
type BudgetPeriod string

// Budget periods.
const (
	PeriodDay   BudgetPeriod = "day"
	PeriodMonth BudgetPeriod = "month"
)

// TokenUsage is the state of one budget period. Limit 0 and Remaining -1 mean unlimited.
type TokenUsage struct {
	Period    BudgetPeriod `json:"period"`
	Limit     int64        `json:"limit"`
	Used      int64        `json:"used"`
	Remaining int64        `json:"remaining"`
	Exhausted bool         `json:"exhausted"`
	ResetsAt  time.Time    `json:"resets_at"`
}
