// Package nats publishes live capture events to a NATS subject tree.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/kailas-cloud/prepscore/internal/domain"
)

// conn is the part of *nats.Conn the publisher uses.
type conn interface {
	Publish(subject string, data []byte) error
	IsConnected() bool
	Drain() error
}

// Publisher sends capture events to "<prefix>.<capture id>.<event type>".
type Publisher struct {
	conn   conn
	prefix string
	logger *zap.Logger
}

// Connect dials the NATS server and returns a publisher on it.
func Connect(url, prefix string, logger *zap.Logger) (*Publisher, error) {
	opts := []natsgo.Option{
		natsgo.Name("prepscore"),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.MaxReconnects(-1),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			logger.Warn("NATS disconnected", zap.Error(err))
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	}

	nc, err := natsgo.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	logger.Info("Connected to NATS", zap.String("url", nc.ConnectedUrl()))

	return newPublisher(nc, prefix, logger), nil
}

func newPublisher(c conn, prefix string, logger *zap.Logger) *Publisher {
	return &Publisher{conn: c, prefix: prefix, logger: logger}
}

// Subject returns the subject an event is published on.
func (p *Publisher) Subject(ev domain.CaptureEvent) string {
	return fmt.Sprintf("%s.%s.%s", p.prefix, ev.CaptureID, ev.Type)
}

// Publish sends one event as JSON.
func (p *Publisher) Publish(_ context.Context, ev domain.CaptureEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal capture event: %w", err)
	}

	subject := p.Subject(ev)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}

// HealthCheck reports whether the connection is up.
func (p *Publisher) HealthCheck(_ context.Context) error {
	if !p.conn.IsConnected() {
		return fmt.Errorf("NATS connection not established")
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (p *Publisher) Close() error {
	if err := p.conn.Drain(); err != nil {
		return fmt.Errorf("drain NATS connection: %w", err)
	}
	return nil
}
