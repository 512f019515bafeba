// Package capture runs continuous speech-to-text sessions.
package capture

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prepscore/internal/domain"
	"github.com/kailas-cloud/prepscore/internal/metrics"
)

// State is the session lifecycle state.
type State string

const (
	// Idle means no recognition is running.
	Idle State = "idle"
	// Recording means a recognition stream is active.
	Recording State = "recording"
)

// Session owns one recognition engine and allows one active stream at a time.
type Session struct {
	engine Engine
	logger *zap.Logger

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSession fails with domain.ErrCapabilityUnavailable when engine is nil or
// reports itself unavailable.
func NewSession(engine Engine, logger *zap.Logger) (*Session, error) {
	if engine == nil || !engine.Available() {
		return nil, domain.ErrCapabilityUnavailable
	}
	return &Session{engine: engine, logger: logger, state: Idle}, nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed when the current recording stops. It is already closed when
// the session never started.
func (s *Session) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return s.done
}

// Start begins continuous recognition. Each update carries the cumulative
// transcript. Engine errors are delivered on the error channel and do not stop
// the session. Both channels close when recording stops.
func (s *Session) Start(ctx context.Context) (<-chan domain.TranscriptUpdate, <-chan error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Recording {
		return nil, nil, domain.ErrSessionActive
	}

	rctx, cancel := context.WithCancel(ctx)
	events, errs, err := s.engine.Listen(rctx)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("start recognition: %w", err)
	}

	updates := make(chan domain.TranscriptUpdate, 16)
	errOut := make(chan error, 4)
	done := make(chan struct{})

	s.state = Recording
	s.cancel = cancel
	s.done = done
	metrics.SpeechSessionsActive.Inc()
	s.logger.Debug("Speech session started")

	go s.pump(rctx, events, errs, updates, errOut, done)

	return updates, errOut, nil
}

// StartWithCallbacks starts recognition and delivers results and errors to
// the callbacks from a single goroutine.
func (s *Session) StartWithCallbacks(
	ctx context.Context, onResult func(domain.TranscriptUpdate), onError func(error),
) error {
	updates, errs, err := s.Start(ctx)
	if err != nil {
		return err
	}

	go func() {
		for updates != nil || errs != nil {
			select {
			case u, ok := <-updates:
				if !ok {
					updates = nil
					continue
				}
				if onResult != nil {
					onResult(u)
				}
			case e, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				if onError != nil {
					onError(e)
				}
			}
		}
	}()
	return nil
}

// Stop requests the recording to end. It does not wait; use Done to observe
// completion. Safe to call repeatedly and before Start.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Session) pump(
	ctx context.Context,
	events <-chan domain.RecognitionEvent, errs <-chan error,
	updates chan<- domain.TranscriptUpdate, errOut chan<- error,
	done chan struct{},
) {
	defer func() {
		close(updates)
		close(errOut)

		s.mu.Lock()
		s.cancel()
		s.state = Idle
		s.mu.Unlock()

		metrics.SpeechSessionsActive.Dec()
		s.logger.Debug("Speech session stopped")
		close(done)
	}()

	for events != nil || errs != nil {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			u := domain.TranscriptUpdate{Transcript: ev.Transcript(), Final: ev.Final()}
			select {
			case updates <- u:
			case <-ctx.Done():
				return
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			metrics.SpeechErrorsTotal.WithLabelValues("recognizer").Inc()
			s.logger.Warn("Speech recognition error", zap.Error(err))
			select {
			case errOut <- err:
			case <-ctx.Done():
				return
			}
		}
	}
}
