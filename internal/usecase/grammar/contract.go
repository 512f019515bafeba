package grammar

import "context"

// Checker returns the number of grammar issues the service flags in text.
type Checker interface {
	Check(ctx context.Context, text string) (int, error)
}
