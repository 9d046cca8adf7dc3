// Package outbox stores domain events in the same transaction as the state
// change that produced them and relays them to the event bus afterwards.
package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/folio/internal/shared/domain"
	"github.com/felixgeelhaar/folio/internal/shared/infrastructure/eventbus"
)

// State is where a message is in the relay.
type State string

const (
	StatePending   State = "pending"
	StatePublished State = "published"
	StateDead      State = "dead"
)

// Message is one stored event. Payload is the encoded bus envelope, published
// unchanged.
type Message struct {
	ID            int64
	EventID       uuid.UUID
	AggregateType string
	AggregateID   uuid.UUID
	EventType     string
	RoutingKey    string
	Payload       json.RawMessage
	Metadata      json.RawMessage
	CreatedAt     time.Time

	PublishedAt      *time.Time
	NextRetryAt      *time.Time
	RetryCount       int
	LastError        *string
	DeadLetteredAt   *time.Time
	DeadLetterReason *string
}

func NewMessage(event domain.DomainEvent) (*Message, error) {
	envelope, err := eventbus.NewConsumedEvent(event)
	if err != nil {
		return nil, err
	}
	payload, err := envelope.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode envelope %s: %w", envelope.EventID, err)
	}
	metadata, err := json.Marshal(envelope.Metadata)
	if err != nil {
		return nil, fmt.Errorf("encode metadata %s: %w", envelope.EventID, err)
	}

	return &Message{
		EventID:       envelope.EventID,
		AggregateType: envelope.AggregateType,
		AggregateID:   envelope.AggregateID,
		EventType:     envelope.RoutingKey,
		RoutingKey:    envelope.RoutingKey,
		Payload:       payload,
		Metadata:      metadata,
		CreatedAt:     envelope.OccurredAt,
	}, nil
}

// NewMessages converts events in order, failing on the first bad one.
func NewMessages(events []domain.DomainEvent) ([]*Message, error) {
	msgs := make([]*Message, len(events))
	for i, event := range events {
		msg, err := NewMessage(event)
		if err != nil {
			return nil, err
		}
		msgs[i] = msg
	}
	return msgs, nil
}

// CorrelationID returns "" when the metadata is missing or unreadable.
func (m *Message) CorrelationID() string {
	var meta eventbus.EventMetadata
	if len(m.Metadata) == 0 || json.Unmarshal(m.Metadata, &meta) != nil {
		return ""
	}
	return meta.CorrelationID
}

func (m *Message) State() State {
	switch {
	case m.DeadLetteredAt != nil:
		return StateDead
	case m.PublishedAt != nil:
		return StatePublished
	default:
		return StatePending
	}
}
