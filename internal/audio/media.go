package audio

import (
	"io"
	"sync"
	"sync/atomic"
)

// Media is the live audio stream of one capture. Writes are decoded once and
// fanned out to every subscriber; a subscriber that falls behind loses frames
// instead of stalling the writer.
type Media struct {
	mu      sync.Mutex
	subs    map[int]chan []int16
	nextID  int
	closed  bool
	carry   []byte
	bufSize int
	dropped atomic.Uint64
}

// NewMedia creates a stream whose subscribers buffer up to bufferFrames writes.
func NewMedia(bufferFrames int) *Media {
	if bufferFrames <= 0 {
		bufferFrames = 64
	}
	return &Media{subs: make(map[int]chan []int16), bufSize: bufferFrames}
}

// Write implements io.Writer. Frames delivered to subscribers are shared and must not be modified.
func (m *Media) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, io.ErrClosedPipe
	}

	data := p
	if len(m.carry) > 0 {
		data = append(m.carry, p...)
		m.carry = nil
	}
	if len(data)%2 == 1 {
		m.carry = []byte{data[len(data)-1]}
		data = data[:len(data)-1]
	}
	if len(data) == 0 {
		return len(p), nil
	}

	frame := DecodePCM16LE(data)
	for _, ch := range m.subs {
		select {
		case ch <- frame:
		default:
			m.dropped.Add(1)
		}
	}
	return len(p), nil
}

// Subscribe registers a reader. The returned channel is closed by Close or by
// the cancel func, whichever comes first.
func (m *Media) Subscribe() (<-chan []int16, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan []int16, m.bufSize)
	if m.closed {
		close(ch)
		return ch, func() {}
	}

	id := m.nextID
	m.nextID++
	m.subs[id] = ch

	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if c, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(c)
		}
	}
}

// Close ends the stream for all subscribers. Idempotent.
func (m *Media) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	for id, ch := range m.subs {
		delete(m.subs, id)
		close(ch)
	}
	return nil
}

// Dropped returns the number of frames lost to slow subscribers.
func (m *Media) Dropped() uint64 {
	return m.dropped.Load()
}
