package domain

import "strings"

// RecognitionResult is one recognized segment with its ranked alternatives.
type RecognitionResult struct {
	Alternatives []string
	Final        bool
}

// RecognitionEvent is one incremental update from a continuous recognizer.
// Results holds every segment recognized so far in this session, in
// recognition order; interim segments may be revised by later events.
type RecognitionEvent struct {
	Results []RecognitionResult
}

// Transcript joins the top alternative of each result in recognition order.
func (e RecognitionEvent) Transcript() string {
	var sb strings.Builder
	for _, r := range e.Results {
		if len(r.Alternatives) > 0 {
			sb.WriteString(r.Alternatives[0])
		}
	}
	return sb.String()
}

// Final reports whether every result in the event is final.
func (e RecognitionEvent) Final() bool {
	for _, r := range e.Results {
		if !r.Final {
			return false
		}
	}
	return len(e.Results) > 0
}

// TranscriptUpdate is the cumulative transcript delivered to the caller.
type TranscriptUpdate struct {
	Transcript string `json:"transcript"`
	Final      bool   `json:"final"`
}
