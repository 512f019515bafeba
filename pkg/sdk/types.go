package prepscore

import "github.com/kailas-cloud/prepscore/internal/domain"

// Score is the composite evaluation of one answer.
type Score struct {
	Score            float64
	Relevance        float64
	GrammarErrorRate float64
	Perfection       float64
	// Degraded names the components ("relevance", "grammar") that fell back
	// to their neutral value.
	Degraded        []string
	EmbeddingTokens int
}

// VoiceMetrics classifies one loudness level.
type VoiceMetrics struct {
	Level   uint8
	Volume  float64
	Pace    string // "too_quiet", "good", "too_loud"
	Clarity string // "unclear", "clear", "distorted"
}

// ClassifyVoice maps a 0..255 loudness level to voice metrics.
func ClassifyVoice(level uint8) VoiceMetrics {
	m := domain.Classify(level)
	return VoiceMetrics{
		Level:   m.Level,
		Volume:  m.Volume,
		Pace:    string(m.Pace),
		Clarity: string(m.Clarity),
	}
}
