package prepscore

import (
	"context"
	"time"

	"github.com/kailas-cloud/prepscore/internal/domain"
)

// UsagePeriod is the budget accounting window.
type UsagePeriod string

// UsagePeriod constants.
const (
	PeriodDay   UsagePeriod = "day"
	PeriodMonth UsagePeriod = "month"
)

// UsageReport contains embedding token usage for the current period.
// TokensLimit 0 and TokensRemaining -1 mean unlimited.
type UsageReport struct {
	Period          UsagePeriod
	TokensLimit     int64
	TokensUsed      int64
	TokensRemaining int64
	IsExhausted     bool
	ResetsAt        time.Time
}

// Usage returns the embedding token report for the given period.
// Observer always records success: the budget is in-memory.
func (c *Client) Usage(ctx context.Context, period UsagePeriod) UsageReport {
	start := time.Now()
	defer func() { c.obs.observe("usage", start, nil) }()

	u := c.usageSvc.GetReport(ctx, domain.BudgetPeriod(period))
	return UsageReport{
		Period:          UsagePeriod(u.Period),
		TokensLimit:     u.Limit,
		TokensUsed:      u.Used,
		TokensRemaining: u.Remaining,
		IsExhausted:     u.Exhausted,
		ResetsAt:        u.ResetsAt,
	}
}

// usageUseCase is the internal interface for usage reports.
type usageUseCase interface {
	GetReport(ctx context.Context, period domain.BudgetPeriod) domain.TokenUsage
}
