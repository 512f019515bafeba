package domain

import (
	"errors"
	"math"
	"testing"
)

func TestNewGrammarReport(t *testing.T) {
	r, err := NewGrammarReport("this are a  sentence", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.WordCount != 4 {
		t.Errorf("expected 4 words, got %d", r.WordCount)
	}
	if math.Abs(r.ErrorRate()-25) > 1e-9 {
		t.Errorf("expected error rate 25, got %f", r.ErrorRate())
	}
}

func TestNewGrammarReport_EmptyText(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := NewGrammarReport(text, 0); !errors.Is(err, ErrEmptyText) {
			t.Errorf("NewGrammarReport(%q): expected ErrEmptyText, got %v", text, err)
		}
	}
}

func TestNewGrammarReport_NegativeCount(t *testing.T) {
	if _, err := NewGrammarReport("fine text", -1); err == nil {
		t.Fatal("expected error for negative count")
	}
}

func TestGrammarReport_ZeroWordsIsZeroRate(t *testing.T) {
	if rate := (GrammarReport{ErrorCount: 3}).ErrorRate(); rate != 0 {
		t.Errorf("expected 0, got %f", rate)
	}
}
