// Package usage reports embedding token consumption against the budget.
package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/prepscore/internal/domain"
)

// Service handles usage reporting.
type Service struct {
	br  BudgetReader
	now func() time.Time
}

// New creates a Service. br can be nil (unlimited mode).
func New(br BudgetReader) *Service {
	return &Service{br: br, now: time.Now}
}

// ParsePeriod maps a query value to a budget period. Empty means day.
func ParsePeriod(s string) (domain.BudgetPeriod, error) {
	switch domain.BudgetPeriod(s) {
	case "", domain.PeriodDay:
		return domain.PeriodDay, nil
	case domain.PeriodMonth:
		return domain.PeriodMonth, nil
	default:
		return "", fmt.Errorf("%w: period must be \"day\" or \"month\", got %q", domain.ErrInvalidInput, s)
	}
}

// GetReport returns usage for the given period.
func (s *Service) GetReport(_ context.Context, period domain.BudgetPeriod) domain.TokenUsage {
	if s.br != nil {
		return s.br.Usage(period)
	}

	now := s.now().UTC()
	var resets time.Time
	if period == domain.PeriodMonth {
		resets = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	} else {
		resets = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	}
	return domain.TokenUsage{Period: period, Remaining: -1, ResetsAt: resets}
}
