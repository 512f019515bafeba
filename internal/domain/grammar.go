package domain

import (
	"fmt"
	"strings"
)

// GrammarReport is the issue count returned by the grammar service for one text.
type GrammarReport struct {
	ErrorCount int
	WordCount  int
}

// NewGrammarReport counts the words of text. Blank text yields ErrEmptyText.
func NewGrammarReport(text string, errorCount int) (GrammarReport, error) {
	words := CountWords(text)
	if words == 0 {
		return GrammarReport{}, ErrEmptyText
	}
	if errorCount < 0 {
		return GrammarReport{}, fmt.Errorf("negative error count %d", errorCount)
	}
	return GrammarReport{ErrorCount: errorCount, WordCount: words}, nil
}

// ErrorRate returns errors per hundred words.
func (r GrammarReport) ErrorRate() float64 {
	if r.WordCount < 1 {
		return 0
	}
	return float64(r.ErrorCount) / float64(r.WordCount) * 100
}

// CountWords splits on whitespace.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
