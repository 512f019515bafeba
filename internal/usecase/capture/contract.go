package capture

import (
	"context"

	"github.com/kailas-cloud/prepscore/internal/domain"
)

// Engine is a continuous speech recognizer. Listen streams recognition events
// until ctx is cancelled or the audio source ends; both channels are closed
// when it stops.
type Engine interface {
	Available() bool
	Listen(ctx context.Context) (<-chan domain.RecognitionEvent, <-chan error, error)
}
