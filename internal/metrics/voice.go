package metrics

import "github.com/prometheus/client_golang/prometheus"

// Live capture metrics.
var (
	VoiceSamplesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prepscore",
			Name:      "voice_samples_total",
			Help:      "Voice metric samples by pace and clarity",
		},
		[]string{"pace", "clarity"},
	)

	SpeechSessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "prepscore",
			Name:      "speech_sessions_active",
			Help:      "Speech capture sessions currently recording",
		},
	)

	SpeechErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prepscore",
			Name:      "speech_errors_total",
			Help:      "Recognition engine errors delivered to callers",
		},
		[]string{"source"}, // "recognizer" / "device"
	)

	TranscriptionRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "prepscore",
			Name:      "transcription_request_duration_seconds",
			Help:      "Speech-to-text request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"status"},
	)
)

var voiceMetricsRegistered bool

// RegisterVoiceMetrics registers live capture metrics. Must be called once from main.
func RegisterVoiceMetrics() {
	if voiceMetricsRegistered {
		return
	}
	prometheus.MustRegister(VoiceSamplesTotal)
	prometheus.MustRegister(SpeechSessionsActive)
	prometheus.MustRegister(SpeechErrorsTotal)
	prometheus.MustRegister(TranscriptionRequestDuration)
	voiceMetricsRegistered = true
}
