package eventbus

import (
	"context"
	"log/slog"
)

// InProcessEventBus is both Publisher and Consumer: Publish dispatches to the
// registered consumers before it returns. It backs single-process deployments
// without RABBITMQ_URL.
type InProcessEventBus struct {
	registry *ConsumerRegistry
	logger   *slog.Logger
}

// NewInProcessEventBus dispatches through registry, or a fresh one when nil.
func NewInProcessEventBus(registry *ConsumerRegistry, logger *slog.Logger) *InProcessEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	if registry == nil {
		registry = NewConsumerRegistry(logger)
	}
	return &InProcessEventBus{registry: registry, logger: logger.With("bus", "inprocess")}
}

func (b *InProcessEventBus) RegisterConsumer(consumer EventConsumer) {
	b.registry.Register(consumer)
}

// Publish drops bodies that are not envelopes. Consumer failures are returned
// so the outbox keeps the message for another attempt.
func (b *InProcessEventBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	out, err := deliver(ctx, b.registry, b.logger, payload, routingKey)
	if out == failed {
		return err
	}
	return nil
}

// Start has nothing to poll; it waits for ctx.
func (b *InProcessEventBus) Start(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (b *InProcessEventBus) Close() error { return nil }
