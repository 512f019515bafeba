package domain

import "context"

// Pace classifies loudness as a proxy for delivery pace.
type Pace string

const (
	PaceTooQuiet Pace = "too_quiet"
	PaceGood     Pace = "good"
	PaceTooLoud  Pace = "too_loud"
)

// Clarity classifies loudness as a proxy for intelligibility.
type Clarity string

const (
	ClarityUnclear   Clarity = "unclear"
	ClarityClear     Clarity = "clear"
	ClarityDistorted Clarity = "distorted"
)

// Classification thresholds on the 0..255 level scale.
const (
	MaxLevel = 255

	paceQuietBelow        = 50
	paceLoudAbove         = 200
	clarityUnclearBelow   = 30
	clarityDistortedAbove = 220
)

// AudioSample is one instantaneous average magnitude of the analysed spectrum.
type AudioSample struct {
	Level uint8
}

// VoiceMetrics is derived deterministically from one AudioSample.
type VoiceMetrics struct {
	Level   uint8   `json:"level"`
	Volume  float64 `json:"volume"`
	Pace    Pace    `json:"pace"`
	Clarity Clarity `json:"clarity"`
}

// Classify maps a level to voice metrics.
func Classify(level uint8) VoiceMetrics {
	m := VoiceMetrics{
		Level:   level,
		Volume:  float64(level) / MaxLevel,
		Pace:    PaceGood,
		Clarity: ClarityClear,
	}

	switch {
	case level < paceQuietBelow:
		m.Pace = PaceTooQuiet
	case level > paceLoudAbove:
		m.Pace = PaceTooLoud
	}

	switch {
	case level < clarityUnclearBelow:
		m.Clarity = ClarityUnclear
	case level > clarityDistortedAbove:
		m.Clarity = ClarityDistorted
	}

	return m
}

// BinCount is the size of the frequency-magnitude analysis window.
const BinCount = 256

// AudioDevice is a capture device that can be opened for spectrum analysis.
// Implementations grant at most one open analyser at a time.
type AudioDevice interface {
	Open(ctx context.Context) (SpectrumAnalyser, error)
}

// SpectrumAnalyser exposes the current magnitude buffer of an open device.
type SpectrumAnalyser interface {
	// FrequencyData fills dst with the latest per-bin magnitudes on a 0..255 scale.
	FrequencyData(dst []uint8) error
	// Close releases the device. Safe to call more than once.
	Close() error
}
