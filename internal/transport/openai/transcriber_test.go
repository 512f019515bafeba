package openai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prepscore/internal/domain"
)

func TestTranscriber_Transcribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("expected model whisper-1, got %q", got)
		}
		if got := r.FormValue("language"); got != "en" {
			t.Errorf("expected language en, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":" I led the migration. "}`))
	}))
	defer srv.Close()

	tr := NewTranscriber(&TranscriberConfig{
		APIKey:   "test-key",
		BaseURL:  srv.URL,
		Model:    "whisper-1",
		Language: "en",
		Logger:   zap.NewNop(),
	})

	text, err := tr.Transcribe(context.Background(), make([]int16, 1600), 16000)
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if text != "I led the migration." {
		t.Errorf("unexpected text %q", text)
	}
}

func TestTranscriber_EmptyWindow(t *testing.T) {
	tr := NewTranscriber(&TranscriberConfig{BaseURL: "http://unused", Logger: zap.NewNop()})

	text, err := tr.Transcribe(context.Background(), nil, 16000)
	if err != nil || text != "" {
		t.Fatalf("expected no-op for empty window, got %q, %v", text, err)
	}
}

func TestTranscriber_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"backend down"}`))
	}))
	defer srv.Close()

	tr := NewTranscriber(&TranscriberConfig{BaseURL: srv.URL, Model: "whisper-1", Logger: zap.NewNop()})

	_, err := tr.Transcribe(context.Background(), make([]int16, 10), 16000)
	if !errors.Is(err, domain.ErrTranscriptionError) {
		t.Fatalf("expected ErrTranscriptionError, got %v", err)
	}
}

type fakeWindowTranscriber struct {
	mu      sync.Mutex
	texts   []string
	errAt   int
	calls   int
	windows []int
}

func (f *fakeWindowTranscriber) Transcribe(_ context.Context, samples []int16, _ int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	f.windows = append(f.windows, len(samples))
	if f.errAt == i+1 {
		return "", domain.ErrTranscriptionError
	}
	if i < len(f.texts) {
		return f.texts[i], nil
	}
	return "", nil
}

func TestStreamRecognizer_Unavailable(t *testing.T) {
	r := newStreamRecognizer(nil, nil, 16000, time.Second, zap.NewNop())
	if r.Available() {
		t.Fatal("expected recognizer without backend to be unavailable")
	}
	if _, _, err := r.Listen(context.Background()); !errors.Is(err, domain.ErrCapabilityUnavailable) {
		t.Fatalf("expected ErrCapabilityUnavailable, got %v", err)
	}
}

func TestStreamRecognizer_AccumulatesFinalResults(t *testing.T) {
	frames := make(chan []int16, 8)
	fake := &fakeWindowTranscriber{texts: []string{"hello", "", "world"}}
	// 10 samples per second, 1s window.
	r := newStreamRecognizer(fake, frames, 10, time.Second, zap.NewNop())

	events, errs, err := r.Listen(context.Background())
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}

	frames <- make([]int16, 10)
	frames <- make([]int16, 10)
	frames <- make([]int16, 4) // trailing partial window flushed on close
	close(frames)

	var got []domain.RecognitionEvent
	for ev := range events {
		got = append(got, ev)
	}
	for range errs {
		t.Error("unexpected recognition error")
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 events (empty window skipped), got %d", len(got))
	}
	if got[0].Transcript() != "hello" {
		t.Errorf("unexpected first transcript %q", got[0].Transcript())
	}
	if got[1].Transcript() != "hello world" || !got[1].Final() {
		t.Errorf("unexpected cumulative transcript %q final=%v", got[1].Transcript(), got[1].Final())
	}
	if len(fake.windows) != 3 || fake.windows[2] != 4 {
		t.Errorf("unexpected windows %v", fake.windows)
	}
}

func TestStreamRecognizer_ErrorDoesNotEndStream(t *testing.T) {
	frames := make(chan []int16, 4)
	fake := &fakeWindowTranscriber{texts: []string{"", "still here"}, errAt: 1}
	r := newStreamRecognizer(fake, frames, 10, time.Second, zap.NewNop())

	events, errs, err := r.Listen(context.Background())
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	frames <- make([]int16, 10)
	frames <- make([]int16, 10)
	close(frames)

	var gotErr error
	var transcripts []string
	for events != nil || errs != nil {
		select {
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			transcripts = append(transcripts, ev.Transcript())
		case e, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			gotErr = e
		}
	}

	if !errors.Is(gotErr, domain.ErrTranscriptionError) {
		t.Errorf("expected transcription error, got %v", gotErr)
	}
	if len(transcripts) != 1 || transcripts[0] != "still here" {
		t.Errorf("unexpected transcripts %v", transcripts)
	}
}

func TestStreamRecognizer_StopsOnCancel(t *testing.T) {
	frames := make(chan []int16)
	r := newStreamRecognizer(&fakeWindowTranscriber{}, frames, 10, time.Second, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	events, _, err := r.Listen(ctx)
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	cancel()

	select {
	case _, ok := <-events:
		if ok {
			t.Fatal("expected no events after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("event channel not closed after cancel")
	}
}
