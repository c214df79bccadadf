// Package publisher fans roster events out to NATS.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/okian/duelwall/pkg/logger"
	"github.com/okian/duelwall/pkg/metrics"
)

// Publisher sends a JSON payload to a subject.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
	Close()
}

// Noop drops every message. It is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }
func (Noop) Close()                                     {}

// conn is the part of *nats.Conn the publisher needs.
type conn interface {
	Publish(subject string, data []byte) error
	Close()
}

// NATSPublisher publishes core NATS messages. When JetStream is available
// the duelwall subjects are captured in a stream for replay.
type NATSPublisher struct {
	conn   conn
	logger logger.Logger
}

// NewNATSPublisher connects to url and ensures the event stream exists.
// A missing JetStream is logged and otherwise ignored.
func NewNATSPublisher(ctx context.Context, url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("duelwall"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	p := newPublisher(nc, logger.Get().Named("publisher"))
	if err := ensureStream(ctx, nc); err != nil {
		p.logger.Warn(ctx, "failed to ensure stream", logger.Error(err))
	}
	return p, nil
}

func newPublisher(c conn, l logger.Logger) *NATSPublisher {
	return &NATSPublisher{conn: c, logger: l}
}

func ensureStream(ctx context.Context, nc *nats.Conn) error {
	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("jetstream: %w", err)
	}
	maxAge, _ := time.ParseDuration(StreamMaxAge)
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: []string{StreamSubjects},
		MaxAge:   maxAge,
	})
	return err
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload any) error {
	kind := subjectKind(subject)
	data, err := json.Marshal(payload)
	if err != nil {
		metrics.RecordEventPublished(kind, err)
		return fmt.Errorf("encode %s: %w", subject, err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		metrics.RecordEventPublished(kind, err)
		p.logger.Warn(ctx, "publish failed", logger.String("subject", subject), logger.Error(err))
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	metrics.RecordEventPublished(kind, nil)
	return nil
}

func (p *NATSPublisher) Close() {
	p.conn.Close()
}

// subjectKind drops ids so metric labels stay bounded:
// duelwall.duel.42.recorded becomes duel.recorded.
func subjectKind(subject string) string {
	parts := strings.Split(strings.TrimPrefix(subject, "duelwall."), ".")
	if len(parts) == 3 {
		return parts[0] + "." + parts[2]
	}
	return strings.Join(parts, ".")
}
