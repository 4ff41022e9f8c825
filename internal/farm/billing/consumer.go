package billing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/farmstead/internal/farm/domain"
	"github.com/aussiebroadwan/farmstead/internal/farm/service"
	"github.com/aussiebroadwan/farmstead/pkg/bus"
)

// Applier is the plan/role bridge.
type Applier interface {
	ApplyPlanChange(ctx context.Context, ev domain.PlanChange) (bool, error)
}

// Consumer applies events delivered over JetStream.
type Consumer struct {
	Plans  Applier
	Logger *slog.Logger
	Now    func() time.Time
}

// Handle processes one message. Malformed or invalid events are permanent
// failures; anything else is retried by redelivery.
func (c *Consumer) Handle(ctx context.Context, data []byte) error {
	ev, err := Decode(data)
	if err != nil {
		c.Logger.Warn("dropping malformed billing event", slog.Any("error", err))
		return fmt.Errorf("%w: %w", bus.ErrPermanent, err)
	}
	if ev.Type != EventTypePlanChanged {
		c.Logger.Debug("ignoring billing event", slog.String("event_id", ev.ID), slog.String("type", ev.Type))
		return nil
	}

	now := time.Now().UTC()
	if c.Now != nil {
		now = c.Now()
	}

	applied, err := c.Plans.ApplyPlanChange(ctx, ev.PlanChange("nats", now))
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		c.Logger.Warn("dropping invalid billing event", slog.String("event_id", ev.ID), slog.Any("error", err))
		return fmt.Errorf("%w: %w", bus.ErrPermanent, err)
	case err != nil:
		c.Logger.Error("failed to apply billing event", slog.String("event_id", ev.ID), slog.Any("error", err))
		return err
	}

	c.Logger.Debug("billing event handled", slog.String("event_id", ev.ID), slog.Bool("applied", applied))
	return nil
}

// Subscriber is the part of *bus.Bus the consumer needs.
type Subscriber interface {
	Subscribe(ctx context.Context, subj, durable string, fn bus.Handler) (io.Closer, error)
}

// Start subscribes c to subject with a durable consumer.
func (c *Consumer) Start(ctx context.Context, sub Subscriber, subject, durable string) (io.Closer, error) {
	closer, err := sub.Subscribe(ctx, subject, durable, c.Handle)
	if err != nil {
		return nil, fmt.Errorf("billing: subscribe %s: %w", subject, err)
	}
	c.Logger.Info("billing consumer started", slog.String("subject", subject), slog.String("durable", durable))
	return closer, nil
}
