// Package bus is a thin JetStream wrapper used to carry billing events
// into the farm service.
package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/nats-io/nats.go"
)

// ErrPermanent marks a handler failure that redelivery cannot fix, such as
// a malformed payload. Messages failing with it are terminated, not retried.
var ErrPermanent = errors.New("bus: permanent failure")

// Handler processes one message payload.
type Handler func(ctx context.Context, data []byte) error

// Bus wraps a NATS JetStream connection for publishing and consuming events.
type Bus struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// New connects to url and opens a JetStream context.
func New(url string, opts ...nats.Option) (*Bus, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("bus: connect: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("bus: jetstream: %w", err)
	}

	return &Bus{conn: nc, js: js}, nil
}

// EnsureStream creates the stream if it does not exist yet.
func (b *Bus) EnsureStream(name string, subjects ...string) error {
	if b == nil {
		return errors.New("nil bus")
	}
	if _, err := b.js.StreamInfo(name); err == nil {
		return nil
	} else if !errors.Is(err, nats.ErrStreamNotFound) {
		return fmt.Errorf("bus: stream info %s: %w", name, err)
	}

	_, err := b.js.AddStream(&nats.StreamConfig{Name: name, Subjects: subjects})
	if err != nil {
		return fmt.Errorf("bus: add stream %s: %w", name, err)
	}
	return nil
}

// Connected reports whether the underlying connection is up.
func (b *Bus) Connected() bool {
	return b != nil && b.conn.IsConnected()
}

// Close drains the underlying NATS connection.
func (b *Bus) Close() {
	if b == nil {
		return
	}
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
	}
}

// Publish encodes v as JSON and publishes it to subj. A non-empty msgID is
// passed as the JetStream de-duplication id.
func (b *Bus) Publish(ctx context.Context, subj, msgID string, v any) error {
	if b == nil {
		return errors.New("nil bus")
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	opts := []nats.PubOpt{nats.Context(ctx)}
	if msgID != "" {
		opts = append(opts, nats.MsgId(msgID))
	}
	_, err = b.js.Publish(subj, data, opts...)
	return err
}

type subscription struct {
	sub    *nats.Subscription
	mu     sync.Mutex
	closed bool
}

func (s *subscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.sub.Drain()
}

// Subscribe creates a durable consumer on subj and invokes fn for each
// message. Errors wrapping ErrPermanent terminate the message; any other
// error naks it for redelivery.
func (b *Bus) Subscribe(ctx context.Context, subj, durable string, fn Handler) (io.Closer, error) {
	if b == nil {
		return nil, errors.New("nil bus")
	}
	if fn == nil {
		return nil, errors.New("nil handler")
	}

	sub, err := b.js.Subscribe(subj, func(msg *nats.Msg) {
		_ = settle(msg, dispatch(ctx, fn, msg.Data))
	}, nats.Durable(durable), nats.ManualAck(), nats.AckExplicit())
	if err != nil {
		return nil, err
	}

	s := &subscription{sub: sub}
	closeOnDone(ctx, s)
	return s, nil
}

// closeOnDone closes c once ctx ends. Callers that never cancel ctx must
// close c themselves.
func closeOnDone(ctx context.Context, c io.Closer) {
	if ctx.Done() == nil {
		return
	}
	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()
}

func dispatch(ctx context.Context, fn Handler, data []byte) error {
	handlerCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	return fn(handlerCtx, data)
}

// acker is the subset of *nats.Msg used to settle a delivery.
type acker interface {
	Ack(...nats.AckOpt) error
	Nak(...nats.AckOpt) error
	Term(...nats.AckOpt) error
}

func settle(msg acker, err error) error {
	switch {
	case err == nil:
		return msg.Ack()
	case errors.Is(err, ErrPermanent):
		return msg.Term()
	default:
		return msg.Nak()
	}
}
