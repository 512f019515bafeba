package domain

import "time"

// CaptureEventType labels an event emitted by a live capture.
type CaptureEventType string

// Capture event types.
const (
	CaptureEventTranscript CaptureEventType = "transcript"
	CaptureEventVoice      CaptureEventType = "voice"
	CaptureEventError      CaptureEventType = "error"
	CaptureEventEnd        CaptureEventType = "end"
)

// CaptureEvent is one update from a live answer capture.
type CaptureEvent struct {
	CaptureID  string            `json:"capture_id"`
	Type       CaptureEventType  `json:"type"`
	Transcript *TranscriptUpdate `json:"transcript,omitempty"`
	Voice      *VoiceMetrics     `json:"voice,omitempty"`
	Error      string            `json:"error,omitempty"`
	Time       time.Time         `json:"time"`
}
