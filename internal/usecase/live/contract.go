package live

import (
	"context"

	"github.com/kailas-cloud/prepscore/internal/domain"
	"github.com/kailas-cloud/prepscore/internal/usecase/capture"
)

// Publisher forwards capture events to an external sink.
type Publisher interface {
	Publish(ctx context.Context, ev domain.CaptureEvent) error
}

// EngineFactory builds a speech engine reading from one capture's audio frames.
type EngineFactory func(frames <-chan []int16) capture.Engine
