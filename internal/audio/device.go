package audio

import (
	"context"
	"sync"

	"github.com/kailas-cloud/prepscore/internal/domain"
)

// Compile-time check: Device implements domain.AudioDevice.
var _ domain.AudioDevice = (*Device)(nil)

const maxMagnitude = 32768

// Device analyses a Media stream. It derives domain.BinCount magnitude bins
// from the most recent window by averaging |sample| within each bin; no
// frequency transform is performed.
type Device struct {
	media         *Media
	samplesPerBin int

	mu   sync.Mutex
	held bool
}

// NewDevice creates a device over media. samplesPerBin sets the window length
// (domain.BinCount * samplesPerBin samples).
func NewDevice(media *Media, samplesPerBin int) *Device {
	if samplesPerBin <= 0 {
		samplesPerBin = 1
	}
	return &Device{media: media, samplesPerBin: samplesPerBin}
}

// Open acquires the device exclusively.
func (d *Device) Open(ctx context.Context) (domain.SpectrumAnalyser, error) {
	if d == nil || d.media == nil {
		return nil, domain.ErrCapabilityUnavailable
	}
	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck // caller's own context
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.held {
		return nil, domain.ErrDeviceBusy
	}
	d.held = true

	frames, unsubscribe := d.media.Subscribe()
	a := &analyser{
		device:      d,
		unsubscribe: unsubscribe,
		window:      make([]int16, domain.BinCount*d.samplesPerBin),
		done:        make(chan struct{}),
	}
	go a.consume(frames)

	return a, nil
}

func (d *Device) release() {
	d.mu.Lock()
	d.held = false
	d.mu.Unlock()
}

type analyser struct {
	device      *Device
	unsubscribe func()

	mu     sync.Mutex
	window []int16 // ring buffer, pos is the oldest sample
	pos    int
	ended  bool
	closed bool

	closeOnce sync.Once
	done      chan struct{}
}

func (a *analyser) consume(frames <-chan []int16) {
	defer close(a.done)
	for frame := range frames {
		a.mu.Lock()
		for _, s := range frame {
			a.window[a.pos] = s
			a.pos = (a.pos + 1) % len(a.window)
		}
		a.mu.Unlock()
	}
	a.mu.Lock()
	a.ended = true
	a.mu.Unlock()
}

// FrequencyData fills dst with per-bin mean magnitudes scaled to 0..255.
// len(dst) bins are produced, up to domain.BinCount.
func (a *analyser) FrequencyData(dst []uint8) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed || a.ended {
		return domain.ErrDeviceClosed
	}

	bins := min(len(dst), domain.BinCount)
	spb := a.device.samplesPerBin
	n := len(a.window)
	for b := 0; b < bins; b++ {
		var sum int64
		for k := b * spb; k < (b+1)*spb; k++ {
			s := int64(a.window[(a.pos+k)%n])
			if s < 0 {
				s = -s
			}
			sum += s
		}
		v := sum / int64(spb) * 255 / maxMagnitude
		dst[b] = uint8(min(v, 255))
	}
	return nil
}

// Close releases the device. Safe to call repeatedly and from any goroutine.
func (a *analyser) Close() error {
	a.closeOnce.Do(func() {
		a.mu.Lock()
		a.closed = true
		a.mu.Unlock()
		a.unsubscribe()
		a.device.release()
	})
	return nil
}
