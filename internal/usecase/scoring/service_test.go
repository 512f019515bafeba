package scoring

import (
	"context"
	"errors"
	"math"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prepscore/internal/domain"
	"github.com/kailas-cloud/prepscore/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterScoringMetrics()
	os.Exit(m.Run())
}

// --- Mocks ---

type mockRelevance struct {
	out   domain.Outcome
	calls atomic.Int32
	delay time.Duration
}

func (m *mockRelevance) Score(_ context.Context, _, _ string) domain.Outcome {
	m.calls.Add(1)
	time.Sleep(m.delay)
	return m.out
}

type mockGrammar struct {
	out   domain.Outcome
	calls atomic.Int32
	delay time.Duration
}

func (m *mockGrammar) Score(_ context.Context, _ string) domain.Outcome {
	m.calls.Add(1)
	time.Sleep(m.delay)
	return m.out
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// --- Tests ---

func TestScore_AllAvailable(t *testing.T) {
	svc := New(
		&mockRelevance{out: domain.Available(0.8)},
		&mockGrammar{out: domain.Available(10)},
		zap.NewNop(),
	)

	got, err := svc.Score(context.Background(), domain.EvaluationRequest{
		Question: "What is X?",
		Answer:   "What is X? X is a thing.",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 0.8*0.4 + (100 - 10*0.3) + 50*0.3
	want := 0.32 + 97 + 15
	if !near(got.Score, want) {
		t.Errorf("expected %f, got %f", want, got.Score)
	}
	if got.Perfection != 50 || got.Relevance != 0.8 || got.GrammarErrorRate != 10 {
		t.Errorf("unexpected sub-scores %+v", got)
	}
	if len(got.Degraded) != 0 {
		t.Errorf("expected no degraded components, got %v", got.Degraded)
	}
}

func TestScore_RejectsInvalidInputBeforeIO(t *testing.T) {
	rel := &mockRelevance{out: domain.Available(1)}
	gr := &mockGrammar{out: domain.Available(0)}
	svc := New(rel, gr, zap.NewNop())

	tests := []domain.EvaluationRequest{
		{Question: "", Answer: "something"},
		{Question: "q", Answer: ""},
		{Question: "q", Answer: "   "},
	}
	for _, req := range tests {
		if _, err := svc.Score(context.Background(), req); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for %+v, got %v", req, err)
		}
	}
	if rel.calls.Load() != 0 || gr.calls.Load() != 0 {
		t.Errorf("expected no sub-scorer calls, got relevance=%d grammar=%d", rel.calls.Load(), gr.calls.Load())
	}
}

func TestScore_DegradesWhenBackendsFail(t *testing.T) {
	svc := New(
		&mockRelevance{out: domain.Unavailable("provider_error")},
		&mockGrammar{out: domain.Unavailable("service_error")},
		zap.NewNop(),
	)

	got, err := svc.Score(context.Background(), domain.EvaluationRequest{Question: "Why?", Answer: "Because."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.IsNaN(got.Score) || math.IsInf(got.Score, 0) {
		t.Fatalf("expected finite score, got %f", got.Score)
	}
	if !near(got.Score, 100) {
		t.Errorf("expected 100 with both backends down and no bonus, got %f", got.Score)
	}
	if !got.IsDegraded(domain.ComponentRelevance) || !got.IsDegraded(domain.ComponentGrammar) {
		t.Errorf("expected both components degraded, got %v", got.Degraded)
	}
}

func TestScore_Idempotent(t *testing.T) {
	svc := New(
		&mockRelevance{out: domain.Available(0.42)},
		&mockGrammar{out: domain.Available(3.5)},
		zap.NewNop(),
	)
	req := domain.EvaluationRequest{Question: "Tell me about yourself.", Answer: "I build backends."}

	first, err := svc.Score(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for range 5 {
		again, err := svc.Score(context.Background(), req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again.Score != first.Score {
			t.Fatalf("score changed between calls: %f vs %f", first.Score, again.Score)
		}
	}
}

func TestScore_SubScorersRunConcurrently(t *testing.T) {
	svc := New(
		&mockRelevance{out: domain.Available(0.5), delay: 100 * time.Millisecond},
		&mockGrammar{out: domain.Available(0), delay: 100 * time.Millisecond},
		zap.NewNop(),
	)

	start := time.Now()
	if _, err := svc.Score(context.Background(), domain.EvaluationRequest{Question: "q", Answer: "a"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 180*time.Millisecond {
		t.Errorf("expected overlapping sub-scorers, took %v", elapsed)
	}
}

func TestCombine_UnavailableFoldsToZero(t *testing.T) {
	// A stale value on an unavailable outcome must not leak into the score.
	got := Combine(domain.Outcome{Value: 0.9}, domain.Available(20), 0)

	if !near(got.Score, 94) {
		t.Errorf("expected 94, got %f", got.Score)
	}
	if got.Relevance != 0 || !got.IsDegraded(domain.ComponentRelevance) {
		t.Errorf("unexpected result %+v", got)
	}
}
