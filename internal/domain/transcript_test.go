package domain

import "testing"

func TestRecognitionEvent_Transcript(t *testing.T) {
	ev := RecognitionEvent{Results: []RecognitionResult{
		{Alternatives: []string{"a closure is", "a clojure is"}, Final: true},
		{Alternatives: nil},
		{Alternatives: []string{" a function"}},
	}}

	if got := ev.Transcript(); got != "a closure is a function" {
		t.Errorf("unexpected transcript %q", got)
	}
	if ev.Final() {
		t.Error("event with interim result must not be final")
	}
}

func TestRecognitionEvent_Final(t *testing.T) {
	if (RecognitionEvent{}).Final() {
		t.Error("empty event must not be final")
	}
	ev := RecognitionEvent{Results: []RecognitionResult{{Alternatives: []string{"x"}, Final: true}}}
	if !ev.Final() {
		t.Error("expected final")
	}
}
