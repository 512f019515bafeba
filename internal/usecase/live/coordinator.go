// Package live runs voice sampling and speech capture side by side on one
// caller-supplied audio stream and fans their events out to subscribers.
package live

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/prepscore/internal/audio"
	"github.com/kailas-cloud/prepscore/internal/domain"
	"github.com/kailas-cloud/prepscore/internal/usecase/capture"
	"github.com/kailas-cloud/prepscore/internal/usecase/voice"
)

const (
	mediaBufferFrames = 64
	subscriberBuffer  = 64
	// Error events kept for replay to subscribers that join later.
	errorReplay = 8
)

// Config holds sampling settings shared by all captures.
type Config struct {
	SampleRate     int
	SampleInterval time.Duration
}

// Coordinator owns every live capture of the process.
type Coordinator struct {
	cfg       Config
	engines   EngineFactory
	publisher Publisher
	logger    *zap.Logger

	mu       sync.Mutex
	captures map[string]*liveCapture
	closed   bool
}

// New creates a Coordinator. engines and publisher may be nil: without an
// engine factory captures run voice metrics only.
func New(cfg Config, engines EngineFactory, publisher Publisher, logger *zap.Logger) *Coordinator {
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = 100 * time.Millisecond
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	return &Coordinator{
		cfg:       cfg,
		engines:   engines,
		publisher: publisher,
		logger:    logger,
		captures:  make(map[string]*liveCapture),
	}
}

type liveCapture struct {
	id     string
	media  *audio.Media
	cancel context.CancelFunc
	logger *zap.Logger

	session *capture.Session

	mu     sync.Mutex
	subs   map[int]chan domain.CaptureEvent
	nextID int
	ended  bool
	errs   []domain.CaptureEvent

	stopOnce sync.Once
	done     chan struct{}
}

// Info describes a started capture.
type Info struct {
	ID     string `json:"id"`
	Speech bool   `json:"speech"`
}

// Start opens a new capture. The capture runs until Stop or Close; it does
// not depend on ctx beyond the setup phase. When speech recognition cannot
// start the capture still runs with voice metrics only and Info.Speech is false.
func (c *Coordinator) Start(ctx context.Context) (Info, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Info{}, domain.ErrCapabilityUnavailable
	}
	c.mu.Unlock()

	id := uuid.NewString()
	media := audio.NewMedia(mediaBufferFrames)

	samplesPerBin := c.cfg.SampleRate * int(c.cfg.SampleInterval/time.Millisecond) / 1000 / domain.BinCount
	sampler, err := voice.NewSampler(audio.NewDevice(media, samplesPerBin))
	if err != nil {
		return Info{}, fmt.Errorf("create sampler: %w", err)
	}
	stream, err := sampler.Open(ctx)
	if err != nil {
		return Info{}, fmt.Errorf("open sampler: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	lc := &liveCapture{
		id:     id,
		media:  media,
		cancel: cancel,
		logger: c.logger.With(zap.String("capture_id", id)),
		subs:   make(map[int]chan domain.CaptureEvent),
		done:   make(chan struct{}),
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		err := stream.Run(runCtx, c.cfg.SampleInterval, func(m domain.VoiceMetrics) {
			c.emit(runCtx, lc, domain.CaptureEvent{Type: domain.CaptureEventVoice, Voice: &m})
		})
		if err != nil {
			lc.logger.Warn("Voice sampling stopped", zap.Error(err))
			c.emit(runCtx, lc, domain.CaptureEvent{Type: domain.CaptureEventError, Error: err.Error()})
		}
	}()

	speechErr := c.startSpeech(runCtx, lc, &wg)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		lc.stop()
		wg.Wait()
		return Info{}, domain.ErrCapabilityUnavailable
	}
	c.captures[id] = lc
	c.mu.Unlock()

	go func() {
		wg.Wait()
		c.finish(lc)
	}()

	if speechErr != nil {
		lc.logger.Info("Capture running without speech recognition", zap.Error(speechErr))
		c.emit(runCtx, lc, domain.CaptureEvent{Type: domain.CaptureEventError, Error: speechErr.Error()})
	}
	lc.logger.Info("Capture started", zap.Bool("speech", speechErr == nil))
	return Info{ID: id, Speech: speechErr == nil}, nil
}

func (c *Coordinator) startSpeech(ctx context.Context, lc *liveCapture, wg *sync.WaitGroup) error {
	if c.engines == nil {
		return fmt.Errorf("speech recognition: %w", domain.ErrCapabilityUnavailable)
	}

	frames, unsubscribe := lc.media.Subscribe()
	session, err := capture.NewSession(c.engines(frames), lc.logger)
	if err != nil {
		unsubscribe()
		return fmt.Errorf("speech recognition: %w", err)
	}

	updates, errs, err := session.Start(ctx)
	if err != nil {
		unsubscribe()
		return fmt.Errorf("speech recognition: %w", err)
	}
	lc.session = session

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer unsubscribe()
		for updates != nil || errs != nil {
			select {
			case u, ok := <-updates:
				if !ok {
					updates = nil
					continue
				}
				c.emit(ctx, lc, domain.CaptureEvent{Type: domain.CaptureEventTranscript, Transcript: &u})
			case e, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				c.emit(ctx, lc, domain.CaptureEvent{Type: domain.CaptureEventError, Error: e.Error()})
			}
		}
	}()
	return nil
}

// Feed returns the writer that appends PCM16LE audio to a capture.
func (c *Coordinator) Feed(id string) (io.Writer, error) {
	lc, err := c.get(id)
	if err != nil {
		return nil, err
	}
	return lc.media, nil
}

// Events subscribes to a capture's events. Recent error events, including a
// failed speech start, are replayed first. The channel closes after the final
// "end" event; cancel unsubscribes early.
func (c *Coordinator) Events(id string) (<-chan domain.CaptureEvent, func(), error) {
	lc, err := c.get(id)
	if err != nil {
		return nil, nil, err
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()

	ch := make(chan domain.CaptureEvent, subscriberBuffer)
	if lc.ended {
		close(ch)
		return ch, func() {}, nil
	}
	for _, ev := range lc.errs {
		ch <- ev
	}
	sid := lc.nextID
	lc.nextID++
	lc.subs[sid] = ch

	return ch, func() {
		lc.mu.Lock()
		defer lc.mu.Unlock()
		if s, ok := lc.subs[sid]; ok {
			delete(lc.subs, sid)
			close(s)
		}
	}, nil
}

// Stop ends a capture. Repeated calls on a running capture are no-ops.
func (c *Coordinator) Stop(id string) error {
	lc, err := c.get(id)
	if err != nil {
		return err
	}
	lc.stop()
	return nil
}

// Done is closed when the capture has fully ended.
func (c *Coordinator) Done(id string) (<-chan struct{}, error) {
	lc, err := c.get(id)
	if err != nil {
		return nil, err
	}
	return lc.done, nil
}

// Active returns the number of running captures.
func (c *Coordinator) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.captures)
}

// Close stops every capture and waits for them to end or ctx to expire.
func (c *Coordinator) Close(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	all := make([]*liveCapture, 0, len(c.captures))
	for _, lc := range c.captures {
		all = append(all, lc)
	}
	c.mu.Unlock()

	for _, lc := range all {
		lc.stop()
	}
	for _, lc := range all {
		select {
		case <-lc.done:
		case <-ctx.Done():
			return fmt.Errorf("waiting for captures: %w", ctx.Err())
		}
	}
	return nil
}

func (c *Coordinator) get(id string) (*liveCapture, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	lc, ok := c.captures[id]
	if !ok {
		return nil, domain.ErrCaptureNotFound
	}
	return lc, nil
}

func (lc *liveCapture) stop() {
	lc.stopOnce.Do(func() {
		if lc.session != nil {
			lc.session.Stop()
		}
		_ = lc.media.Close()
		lc.cancel()
	})
}

// emit stamps ev and delivers it to subscribers without blocking, then to the
// publisher.
func (c *Coordinator) emit(ctx context.Context, lc *liveCapture, ev domain.CaptureEvent) {
	ev.CaptureID = lc.id
	ev.Time = time.Now().UTC()

	lc.mu.Lock()
	if lc.ended {
		lc.mu.Unlock()
		return
	}
	if ev.Type == domain.CaptureEventError {
		if len(lc.errs) == errorReplay {
			lc.errs = lc.errs[1:]
		}
		lc.errs = append(lc.errs, ev)
	}
	for _, ch := range lc.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	lc.mu.Unlock()

	c.publish(ctx, lc, ev)
}

func (c *Coordinator) publish(ctx context.Context, lc *liveCapture, ev domain.CaptureEvent) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.Publish(ctx, ev); err != nil && !errors.Is(err, context.Canceled) {
		lc.logger.Warn("Failed to publish capture event",
			zap.String("type", string(ev.Type)),
			zap.Error(err),
		)
	}
}

func (c *Coordinator) finish(lc *liveCapture) {
	lc.stop()

	end := domain.CaptureEvent{CaptureID: lc.id, Type: domain.CaptureEventEnd, Time: time.Now().UTC()}

	lc.mu.Lock()
	lc.ended = true
	for sid, ch := range lc.subs {
		// Make room for the end event by dropping the oldest buffered one.
		select {
		case ch <- end:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- end:
			default:
			}
		}
		delete(lc.subs, sid)
		close(ch)
	}
	lc.mu.Unlock()

	c.publish(context.Background(), lc, end)

	c.mu.Lock()
	delete(c.captures, lc.id)
	c.mu.Unlock()

	close(lc.done)
	lc.logger.Info("Capture ended", zap.Uint64("dropped_frames", lc.media.Dropped()))
}
