package nats

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prepscore/internal/domain"
)

type published struct {
	subject string
	data    []byte
}

type fakeConn struct {
	msgs      []published
	err       error
	connected bool
	drained   bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, published{subject: subject, data: data})
	return nil
}

func (f *fakeConn) IsConnected() bool { return f.connected }

func (f *fakeConn) Drain() error {
	f.drained = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	fc := &fakeConn{connected: true}
	p := newPublisher(fc, "prepscore.capture", zap.NewNop())

	ev := domain.CaptureEvent{
		CaptureID: "c1",
		Type:      domain.CaptureEventVoice,
		Voice:     &domain.VoiceMetrics{Level: 120, Pace: domain.PaceGood, Clarity: domain.ClarityClear},
		Time:      time.Unix(0, 0).UTC(),
	}
	if err := p.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if len(fc.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(fc.msgs))
	}
	if fc.msgs[0].subject != "prepscore.capture.c1.voice" {
		t.Errorf("unexpected subject %q", fc.msgs[0].subject)
	}

	var got domain.CaptureEvent
	if err := json.Unmarshal(fc.msgs[0].data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Voice == nil || got.Voice.Level != 120 || got.Transcript != nil {
		t.Errorf("unexpected payload %+v", got)
	}
}

func TestPublisher_PublishError(t *testing.T) {
	p := newPublisher(&fakeConn{err: errors.New("nats: connection closed")}, "p", zap.NewNop())

	err := p.Publish(context.Background(), domain.CaptureEvent{CaptureID: "c1", Type: domain.CaptureEventEnd})
	if err == nil {
		t.Fatal("expected publish error")
	}
}

func TestPublisher_HealthAndClose(t *testing.T) {
	fc := &fakeConn{}
	p := newPublisher(fc, "p", zap.NewNop())

	if err := p.HealthCheck(context.Background()); err == nil {
		t.Error("expected error while disconnected")
	}
	fc.connected = true
	if err := p.HealthCheck(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := p.Close(); err != nil || !fc.drained {
		t.Errorf("expected drain on close, err=%v", err)
	}
}
