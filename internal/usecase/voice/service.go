// Package voice samples loudness from an audio device and classifies delivery.
package voice

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kailas-cloud/prepscore/internal/domain"
	"github.com/kailas-cloud/prepscore/internal/metrics"
)

// Sampler opens sampling streams on one audio device.
type Sampler struct {
	device domain.AudioDevice
}

// NewSampler fails with domain.ErrCapabilityUnavailable when device is nil.
func NewSampler(device domain.AudioDevice) (*Sampler, error) {
	if device == nil {
		return nil, domain.ErrCapabilityUnavailable
	}
	return &Sampler{device: device}, nil
}

// Open acquires the device. A device already held by another stream yields
// domain.ErrDeviceBusy.
func (s *Sampler) Open(ctx context.Context) (*Stream, error) {
	a, err := s.device.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	return &Stream{analyser: a, bins: make([]uint8, domain.BinCount)}, nil
}

// Classify maps a sample level to voice metrics.
func Classify(level uint8) domain.VoiceMetrics {
	return domain.Classify(level)
}

// Stream is an open sampling session. Close releases the device.
type Stream struct {
	analyser domain.SpectrumAnalyser

	mu   sync.Mutex
	bins []uint8

	closeOnce sync.Once
	closeErr  error
}

// SampleLevel returns the integer mean of the current magnitude buffer.
func (s *Stream) SampleLevel() (domain.AudioSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.analyser.FrequencyData(s.bins); err != nil {
		return domain.AudioSample{}, fmt.Errorf("read frequency data: %w", err)
	}

	var sum int
	for _, b := range s.bins {
		sum += int(b)
	}
	return domain.AudioSample{Level: uint8(sum / len(s.bins))}, nil
}

// Sample reads one level and classifies it.
func (s *Stream) Sample() (domain.VoiceMetrics, error) {
	sample, err := s.SampleLevel()
	if err != nil {
		return domain.VoiceMetrics{}, err
	}
	m := domain.Classify(sample.Level)
	metrics.VoiceSamplesTotal.WithLabelValues(string(m.Pace), string(m.Clarity)).Inc()
	return m, nil
}

// Close releases the device. Safe to call repeatedly; never blocks on I/O.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.analyser.Close()
	})
	return s.closeErr
}

// Run samples every interval and passes each result to emit until ctx is
// done or the device ends. The stream is closed on return. A device error
// other than end-of-stream is returned.
func (s *Stream) Run(ctx context.Context, interval time.Duration, emit func(domain.VoiceMetrics)) error {
	defer s.Close()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m, err := s.Sample()
			if errors.Is(err, domain.ErrDeviceClosed) {
				return nil
			}
			if err != nil {
				return err
			}
			emit(m)
		}
	}
}
