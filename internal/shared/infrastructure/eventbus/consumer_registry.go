package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/felixgeelhaar/folio/pkg/observability"
)

// ConsumerRegistry routes events by routing key. The in-process bus and the
// RabbitMQ consumer share one, so subscribers register once.
type ConsumerRegistry struct {
	mu     sync.RWMutex
	routes map[string][]EventConsumer

	logger  *slog.Logger
	metrics observability.Metrics
}

func NewConsumerRegistry(logger *slog.Logger) *ConsumerRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsumerRegistry{
		routes:  make(map[string][]EventConsumer),
		logger:  logger,
		metrics: observability.NoopMetrics{},
	}
}

// WithMetrics counts handled events per routing key.
func (r *ConsumerRegistry) WithMetrics(metrics observability.Metrics) *ConsumerRegistry {
	if metrics != nil {
		r.metrics = metrics
	}
	return r
}

// Register routes each of the consumer's event types to it.
func (r *ConsumerRegistry) Register(consumer EventConsumer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, key := range consumer.EventTypes() {
		r.routes[key] = append(r.routes[key], consumer)
	}
	r.logger.Debug("registered event consumer", "consumer", consumerName(consumer), "event_types", consumer.EventTypes())
}

// Consumers returns a copy of the consumers for routingKey.
func (r *ConsumerRegistry) Consumers(routingKey string) []EventConsumer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.routes[routingKey])
}

// EventTypes returns the routing keys with at least one consumer, sorted.
func (r *ConsumerRegistry) EventTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.routes))
	for key := range r.routes {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// Len counts registrations; a consumer with two event types counts twice.
func (r *ConsumerRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, consumers := range r.routes {
		n += len(consumers)
	}
	return n
}

// Dispatch hands event to every consumer of its routing key. A failing
// consumer does not stop the others; all failures are joined.
func (r *ConsumerRegistry) Dispatch(ctx context.Context, event *ConsumedEvent) error {
	consumers := r.Consumers(event.RoutingKey)
	if len(consumers) == 0 {
		r.logger.Debug("no consumers for event", "routing_key", event.RoutingKey)
		return nil
	}

	ctx = observability.WithCorrelationID(ctx, event.Metadata.CorrelationID)

	var errs []error
	for _, consumer := range consumers {
		if err := consumer.Handle(ctx, event); err != nil {
			r.logger.ErrorContext(ctx, "event consumer failed",
				"consumer", consumerName(consumer),
				"routing_key", event.RoutingKey,
				"event_id", event.EventID,
				observability.ErrorKey, err,
			)
			errs = append(errs, err)
			continue
		}
		r.metrics.Counter(observability.MetricEventsConsumed, 1, observability.T("routing_key", event.RoutingKey))
	}
	if len(errs) > 0 {
		return fmt.Errorf("dispatch %s: %w", event.RoutingKey, errors.Join(errs...))
	}
	return nil
}

func consumerName(consumer EventConsumer) string {
	return fmt.Sprintf("%T", consumer)
}
