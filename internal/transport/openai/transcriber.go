package openai

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/prepscore/internal/audio"
	"github.com/kailas-cloud/prepscore/internal/domain"
	"github.com/kailas-cloud/prepscore/internal/metrics"
)

// Transcriber calls an OpenAI-compatible /audio/transcriptions endpoint.
type Transcriber struct {
	client   *openai.Client
	model    string
	language string
	logger   *zap.Logger
}

// TranscriberConfig holds the speech-to-text backend settings.
type TranscriberConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	Language string
	Logger   *zap.Logger
}

// NewTranscriber creates a speech-to-text client.
func NewTranscriber(cfg *TranscriberConfig) *Transcriber {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Transcriber{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		language: cfg.Language,
		logger:   cfg.Logger,
	}
}

// Transcribe sends one window of mono PCM16 audio and returns its text.
func (t *Transcriber) Transcribe(ctx context.Context, samples []int16, sampleRate int) (string, error) {
	if len(samples) == 0 {
		return "", nil
	}

	req := openai.AudioRequest{
		Model:    t.model,
		FilePath: "answer.wav",
		Reader:   bytes.NewReader(audio.EncodeWAV(samples, sampleRate)),
		Language: t.language,
		Format:   openai.AudioResponseFormatJSON,
	}

	start := time.Now()
	resp, err := t.client.CreateTranscription(ctx, req)
	duration := time.Since(start)
	if err != nil {
		metrics.TranscriptionRequestDuration.WithLabelValues("error").Observe(duration.Seconds())
		return "", wrapAPIError(err, "transcription", domain.ErrTranscriptionError)
	}
	metrics.TranscriptionRequestDuration.WithLabelValues("success").Observe(duration.Seconds())

	t.logger.Debug("Transcription completed",
		zap.Int("samples", len(samples)),
		zap.Duration("duration", duration),
		zap.Int("text_length", len(resp.Text)),
	)
	return strings.TrimSpace(resp.Text), nil
}

// HealthCheck verifies API availability via ListModels.
func (t *Transcriber) HealthCheck(ctx context.Context) error {
	if _, err := t.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// windowTranscriber is the part of Transcriber the stream recognizer needs.
type windowTranscriber interface {
	Transcribe(ctx context.Context, samples []int16, sampleRate int) (string, error)
}

// StreamRecognizer turns a live frame subscription into a continuous
// recognition stream. Audio is cut into fixed windows; each non-empty window
// transcript becomes one final result appended to the session's result list.
type StreamRecognizer struct {
	tr            windowTranscriber
	frames        <-chan []int16
	sampleRate    int
	windowSamples int
	logger        *zap.Logger
}

// NewStreamRecognizer binds the transcriber to one capture's frames.
func (t *Transcriber) NewStreamRecognizer(frames <-chan []int16, sampleRate int, window time.Duration) *StreamRecognizer {
	return newStreamRecognizer(t, frames, sampleRate, window, t.logger)
}

func newStreamRecognizer(
	tr windowTranscriber, frames <-chan []int16, sampleRate int, window time.Duration, logger *zap.Logger,
) *StreamRecognizer {
	ws := int(float64(sampleRate) * window.Seconds())
	if ws <= 0 {
		ws = sampleRate
	}
	return &StreamRecognizer{
		tr:            tr,
		frames:        frames,
		sampleRate:    sampleRate,
		windowSamples: ws,
		logger:        logger,
	}
}

// Available reports whether the recognizer has a backend and an audio source.
func (r *StreamRecognizer) Available() bool {
	return r != nil && r.tr != nil && r.frames != nil && r.sampleRate > 0
}

// Listen starts recognition. Both channels close when the frames end or ctx is done.
// Transcription failures are sent on the error channel and recognition continues.
func (r *StreamRecognizer) Listen(ctx context.Context) (<-chan domain.RecognitionEvent, <-chan error, error) {
	if !r.Available() {
		return nil, nil, domain.ErrCapabilityUnavailable
	}

	windows := make(chan []int16, 4)
	events := make(chan domain.RecognitionEvent, 4)
	errs := make(chan error, 4)

	go r.segment(ctx, windows)
	go r.transcribe(ctx, windows, events, errs)

	return events, errs, nil
}

func (r *StreamRecognizer) segment(ctx context.Context, windows chan<- []int16) {
	defer close(windows)

	buf := make([]int16, 0, r.windowSamples)
	emit := func() bool {
		if len(buf) == 0 {
			return true
		}
		w := buf
		buf = make([]int16, 0, r.windowSamples)
		select {
		case windows <- w:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-r.frames:
			if !ok {
				emit()
				return
			}
			buf = append(buf, frame...)
			if len(buf) >= r.windowSamples && !emit() {
				return
			}
		}
	}
}

func (r *StreamRecognizer) transcribe(
	ctx context.Context, windows <-chan []int16, events chan<- domain.RecognitionEvent, errs chan<- error,
) {
	defer close(events)
	defer close(errs)

	var results []domain.RecognitionResult
	for w := range windows {
		text, err := r.tr.Transcribe(ctx, w, r.sampleRate)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			r.logger.Warn("Window transcription failed", zap.Int("samples", len(w)), zap.Error(err))
			select {
			case errs <- err:
			case <-ctx.Done():
				return
			}
			continue
		}
		if text == "" {
			continue
		}
		if len(results) > 0 {
			text = " " + text
		}
		results = append(results, domain.RecognitionResult{Alternatives: []string{text}, Final: true})

		snapshot := make([]domain.RecognitionResult, len(results))
		copy(snapshot, results)
		select {
		case events <- domain.RecognitionEvent{Results: snapshot}:
		case <-ctx.Done():
			return
		}
	}
}
