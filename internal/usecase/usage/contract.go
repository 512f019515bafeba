package usage

import "github.com/kailas-cloud/prepscore/internal/domain"

// BudgetReader provides read-only access to token budget state.
type BudgetReader interface {
	Usage(p domain.BudgetPeriod) domain.TokenUsage
}
