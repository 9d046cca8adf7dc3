package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/folio/internal/shared/domain"
)

// Publisher sends encoded events to the bus.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
	Close() error
}

// EventConsumer handles specific event types.
type EventConsumer interface {
	// EventTypes returns the routing keys this consumer handles,
	// e.g. ["content.section.saved"].
	EventTypes() []string

	Handle(ctx context.Context, event *ConsumedEvent) error
}

// Consumer receives events from a broker and dispatches them.
type Consumer interface {
	// Start blocks until ctx is done or the consumer is closed.
	Start(ctx context.Context) error
	RegisterConsumer(consumer EventConsumer)
	Close() error
}

// ConsumedEvent is the envelope every event travels in.
type ConsumedEvent struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	RoutingKey    string          `json:"routing_key"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
	Metadata      EventMetadata   `json:"metadata,omitempty"`
}

// EventMetadata carries tracing data alongside the payload.
type EventMetadata struct {
	CorrelationID string `json:"correlation_id,omitempty"`
}

// NewConsumedEvent wraps a domain event in the bus envelope. The payload is
// the JSON encoding of the concrete event.
func NewConsumedEvent(event domain.DomainEvent) (*ConsumedEvent, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event.RoutingKey(), err)
	}
	return &ConsumedEvent{
		EventID:       event.EventID(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		RoutingKey:    event.RoutingKey(),
		OccurredAt:    event.OccurredAt(),
		Payload:       payload,
		Metadata:      EventMetadata{CorrelationID: event.CorrelationID()},
	}, nil
}

// Encode returns the wire form of the envelope.
func (e *ConsumedEvent) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodePayload unmarshals the event payload into v.
func (e *ConsumedEvent) DecodePayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// Decode parses a wire envelope. fallbackKey fills in a missing routing key,
// as brokers carry it outside the body.
func Decode(body []byte, fallbackKey string) (*ConsumedEvent, error) {
	event := &ConsumedEvent{}
	if err := json.Unmarshal(body, event); err != nil {
		return nil, err
	}
	if event.RoutingKey == "" {
		event.RoutingKey = fallbackKey
	}
	return event, nil
}
