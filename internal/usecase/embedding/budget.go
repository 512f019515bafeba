// Package embedding guards the embedding provider with a token budget and
// request logging.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prepscore/internal/db"
	"github.com/kailas-cloud/prepscore/internal/domain"
	"github.com/kailas-cloud/prepscore/internal/metrics"
)

// BudgetAction defines behavior when the token budget is exhausted.
type BudgetAction string

const (
	// BudgetActionWarn logs a warning but allows the request.
	BudgetActionWarn BudgetAction = "warn"
	// BudgetActionReject blocks the request with domain.ErrEmbeddingQuotaExceeded.
	BudgetActionReject BudgetAction = "reject"
)

// BudgetStore persists budget counters across restarts.
type BudgetStore interface {
	IncrBy(ctx context.Context, key string, val int64) error
	GetCounter(ctx context.Context, key string) (int64, error)
}

type window struct {
	period domain.BudgetPeriod
	limit  int64
	used   int64
	start  time.Time
}

func periodStart(p domain.BudgetPeriod, t time.Time) time.Time {
	t = t.UTC()
	if p == domain.PeriodMonth {
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func periodEnd(p domain.BudgetPeriod, start time.Time) time.Time {
	if p == domain.PeriodMonth {
		return start.AddDate(0, 1, 0)
	}
	return start.AddDate(0, 0, 1)
}

// roll zeroes the counter when now falls into a later period.
func (w *window) roll(now time.Time) {
	if s := periodStart(w.period, now); s.After(w.start) {
		w.used = 0
		w.start = s
	}
}

func (w *window) exhausted() bool {
	return w.limit > 0 && w.used >= w.limit
}

func (w *window) remaining() int64 {
	if w.limit == 0 {
		return -1
	}
	return max(w.limit-w.used, 0)
}

func (w *window) usage() domain.TokenUsage {
	return domain.TokenUsage{
		Period:    w.period,
		Limit:     w.limit,
		Used:      w.used,
		Remaining: w.remaining(),
		Exhausted: w.exhausted(),
		ResetsAt:  periodEnd(w.period, w.start),
	}
}

// Budget tracks embedding token consumption per day and per month. Check is
// in-memory; Record updates memory first and then writes behind to the store.
type Budget struct {
	mu       sync.Mutex
	day      window
	month    window
	action   BudgetAction
	provider string
	store    BudgetStore
	now      func() time.Time
	logger   *zap.Logger
}

// NewBudget creates a budget. A zero limit means unlimited.
func NewBudget(provider string, dailyLimit, monthlyLimit int64, action BudgetAction, logger *zap.Logger) *Budget {
	b := &Budget{
		action:   action,
		provider: provider,
		now:      time.Now,
		logger:   logger,
	}
	now := b.now()
	b.day = window{period: domain.PeriodDay, limit: dailyLimit, start: periodStart(domain.PeriodDay, now)}
	b.month = window{period: domain.PeriodMonth, limit: monthlyLimit, start: periodStart(domain.PeriodMonth, now)}
	return b
}

// WithStore attaches persistence and loads the current period counters.
func (b *Budget) WithStore(ctx context.Context, store BudgetStore) *Budget {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.store = store
	for _, w := range []*window{&b.day, &b.month} {
		key := b.key(w.period, w.start)
		val, err := store.GetCounter(ctx, key)
		switch {
		case err == nil:
			w.used = val
		case errors.Is(err, db.ErrKeyNotFound):
		default:
			b.logger.Warn("Failed to load token budget", zap.String("key", key), zap.Error(err))
		}
	}

	b.logger.Info("Token budget loaded",
		zap.String("provider", b.provider),
		zap.Int64("daily_used", b.day.used),
		zap.Int64("monthly_used", b.month.used),
	)
	return b
}

func (b *Budget) key(p domain.BudgetPeriod, start time.Time) string {
	layout := "2006-01-02"
	if p == domain.PeriodMonth {
		layout = "2006-01"
	}
	return fmt.Sprintf("%sbudget:%s:%s:%s", domain.KeyPrefix, b.provider, p, start.Format(layout))
}

func (b *Budget) rollLocked() {
	now := b.now()
	b.day.roll(now)
	b.month.roll(now)
}

// Check returns domain.ErrEmbeddingQuotaExceeded when a period is exhausted
// and the action is reject.
func (b *Budget) Check(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rollLocked()
	if !b.day.exhausted() && !b.month.exhausted() {
		return nil
	}
	if b.action == BudgetActionReject {
		return domain.ErrEmbeddingQuotaExceeded
	}

	b.logger.Warn("Token budget exceeded",
		zap.String("provider", b.provider),
		zap.Int64("daily_used", b.day.used),
		zap.Int64("daily_limit", b.day.limit),
		zap.Int64("monthly_used", b.month.used),
		zap.Int64("monthly_limit", b.month.limit),
	)
	return nil
}

// Record adds consumed tokens.
func (b *Budget) Record(tokens int64) {
	if tokens <= 0 {
		return
	}

	b.mu.Lock()
	b.rollLocked()
	b.day.used += tokens
	b.month.used += tokens
	store := b.store
	keys := []string{b.key(b.day.period, b.day.start), b.key(b.month.period, b.month.start)}
	dayLeft, monthLeft := b.day.remaining(), b.month.remaining()
	b.mu.Unlock()

	metrics.EmbeddingBudgetTokensRemaining.WithLabelValues(b.provider, string(domain.PeriodDay)).Set(float64(dayLeft))
	metrics.EmbeddingBudgetTokensRemaining.WithLabelValues(b.provider, string(domain.PeriodMonth)).Set(float64(monthLeft))

	if store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for _, key := range keys {
		if err := store.IncrBy(ctx, key, tokens); err != nil {
			b.logger.Warn("Failed to persist token budget", zap.String("key", key), zap.Error(err))
		}
	}
}

// Usage reports the state of one period.
func (b *Budget) Usage(p domain.BudgetPeriod) domain.TokenUsage {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rollLocked()
	if p == domain.PeriodMonth {
		return b.month.usage()
	}
	return b.day.usage()
}
