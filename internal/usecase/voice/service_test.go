package voice

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kailas-cloud/prepscore/internal/domain"
	"github.com/kailas-cloud/prepscore/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterVoiceMetrics()
	os.Exit(m.Run())
}

// --- Mocks ---

type mockAnalyser struct {
	mu     sync.Mutex
	fill   func(dst []uint8)
	err    error
	closes atomic.Int32
}

func (m *mockAnalyser) FrequencyData(dst []uint8) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.fill(dst)
	return nil
}

func (m *mockAnalyser) Close() error {
	m.closes.Add(1)
	return nil
}

func (m *mockAnalyser) setErr(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

type mockDevice struct {
	analyser *mockAnalyser
	err      error
}

func (d *mockDevice) Open(_ context.Context) (domain.SpectrumAnalyser, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.analyser, nil
}

func constant(v uint8) func([]uint8) {
	return func(dst []uint8) {
		for i := range dst {
			dst[i] = v
		}
	}
}

// --- Tests ---

func TestNewSampler_NoDevice(t *testing.T) {
	if _, err := NewSampler(nil); !errors.Is(err, domain.ErrCapabilityUnavailable) {
		t.Fatalf("expected ErrCapabilityUnavailable, got %v", err)
	}
}

func TestOpen_DeviceBusy(t *testing.T) {
	s, _ := NewSampler(&mockDevice{err: domain.ErrDeviceBusy})

	if _, err := s.Open(context.Background()); !errors.Is(err, domain.ErrDeviceBusy) {
		t.Fatalf("expected ErrDeviceBusy, got %v", err)
	}
}

func TestSampleLevel_IntegerMean(t *testing.T) {
	// Half the bins at 100, half at 51: mean 75.5 truncates to 75.
	a := &mockAnalyser{fill: func(dst []uint8) {
		for i := range dst {
			if i%2 == 0 {
				dst[i] = 100
			} else {
				dst[i] = 51
			}
		}
	}}
	s, _ := NewSampler(&mockDevice{analyser: a})
	st, err := s.Open(context.Background())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer st.Close()

	got, err := st.SampleLevel()
	if err != nil {
		t.Fatalf("SampleLevel failed: %v", err)
	}
	if got.Level != 75 {
		t.Errorf("expected 75, got %d", got.Level)
	}
}

func TestSample_Classifies(t *testing.T) {
	s, _ := NewSampler(&mockDevice{analyser: &mockAnalyser{fill: constant(10)}})
	st, _ := s.Open(context.Background())
	defer st.Close()

	m, err := st.Sample()
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	if m.Pace != domain.PaceTooQuiet || m.Clarity != domain.ClarityUnclear {
		t.Errorf("unexpected metrics %+v", m)
	}
}

func TestClose_Idempotent(t *testing.T) {
	a := &mockAnalyser{fill: constant(0)}
	s, _ := NewSampler(&mockDevice{analyser: a})
	st, _ := s.Open(context.Background())

	for range 3 {
		if err := st.Close(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if got := a.closes.Load(); got != 1 {
		t.Errorf("expected device released once, got %d", got)
	}
}

func TestRun_EmitsUntilCancel(t *testing.T) {
	a := &mockAnalyser{fill: constant(120)}
	s, _ := NewSampler(&mockDevice{analyser: a})
	st, _ := s.Open(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	var emitted atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- st.Run(ctx, 5*time.Millisecond, func(m domain.VoiceMetrics) {
			if m.Pace != domain.PaceGood || m.Clarity != domain.ClarityClear {
				t.Errorf("unexpected metrics %+v", m)
			}
			if emitted.Add(1) == 3 {
				cancel()
			}
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
	if a.closes.Load() != 1 {
		t.Errorf("expected stream closed on return")
	}
}

func TestRun_StopsWhenDeviceEnds(t *testing.T) {
	a := &mockAnalyser{fill: constant(60)}
	s, _ := NewSampler(&mockDevice{analyser: a})
	st, _ := s.Open(context.Background())
	a.setErr(domain.ErrDeviceClosed)

	if err := st.Run(context.Background(), time.Millisecond, func(domain.VoiceMetrics) {}); err != nil {
		t.Fatalf("expected clean stop, got %v", err)
	}
}

func TestRun_ReturnsDeviceError(t *testing.T) {
	a := &mockAnalyser{fill: constant(60)}
	s, _ := NewSampler(&mockDevice{analyser: a})
	st, _ := s.Open(context.Background())
	a.setErr(errors.New("driver fault"))

	if err := st.Run(context.Background(), time.Millisecond, func(domain.VoiceMetrics) {}); err == nil {
		t.Fatal("expected device error")
	}
}
