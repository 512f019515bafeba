package domain

import "errors"

var (
	// ErrInvalidInput signals a missing or blank request field.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmptyText signals text with no words to score.
	ErrEmptyText = errors.New("empty text")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbeddingQuotaExceeded signals an exhausted embedding token budget.
	ErrEmbeddingQuotaExceeded = errors.New("embedding quota exceeded")
	// ErrGrammarServiceError signals a grammar service failure.
	ErrGrammarServiceError = errors.New("grammar service error")
	// ErrTranscriptionError signals a speech-to-text backend failure.
	ErrTranscriptionError = errors.New("transcription error")

	// ErrCapabilityUnavailable signals that the host lacks a required capability
	// (speech recognition, audio device).
	ErrCapabilityUnavailable = errors.New("capability unavailable")
	// ErrDeviceBusy signals that an audio device is already held by another stream.
	ErrDeviceBusy = errors.New("audio device busy")
	// ErrDeviceClosed signals a read from a released audio device.
	ErrDeviceClosed = errors.New("audio device closed")
	// ErrSessionActive signals a second start on a recording session.
	ErrSessionActive = errors.New("speech session already recording")
	// ErrCaptureNotFound signals an unknown live capture.
	ErrCaptureNotFound = errors.New("capture not found")
)
