package domain

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// EvaluationRequest is one question/answer pair submitted for scoring.
type EvaluationRequest struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
}

// Validate rejects missing and whitespace-only fields.
func (r EvaluationRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, describeValidation(err))
	}
	if strings.TrimSpace(r.Question) == "" {
		return fmt.Errorf("%w: question must not be blank", ErrInvalidInput)
	}
	if strings.TrimSpace(r.Answer) == "" {
		return fmt.Errorf("%w: answer must not be blank", ErrInvalidInput)
	}
	return nil
}

func describeValidation(err error) string {
	verrs, ok := err.(validator.ValidationErrors) //nolint:errorlint // validator returns the concrete type
	if !ok || len(verrs) == 0 {
		return err.Error()
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	return strings.Join(fields, ", ") + " is required"
}

// Outcome is a sub-score that may be unavailable because its backend failed.
// Unavailable outcomes always carry Value 0.
type Outcome struct {
	Value     float64
	Available bool
	Reason    string
}

// Available wraps a successfully computed sub-score.
func Available(v float64) Outcome {
	return Outcome{Value: v, Available: true}
}

// Unavailable records a degraded sub-score.
func Unavailable(reason string) Outcome {
	return Outcome{Reason: reason}
}

// Component names reported in CompositeScore.Degraded.
const (
	ComponentRelevance = "relevance"
	ComponentGrammar   = "grammar"
)

// CompositeScore is the weighted combination of the three sub-scores.
type CompositeScore struct {
	Score            float64
	Relevance        float64
	GrammarErrorRate float64
	Perfection       float64
	Degraded         []string
}

// IsDegraded reports whether the named component fell back to its neutral value.
func (c CompositeScore) IsDegraded(component string) bool {
	for _, d := range c.Degraded {
		if d == component {
			return true
		}
	}
	return false
}
