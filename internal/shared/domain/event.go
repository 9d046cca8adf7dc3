package domain

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is something that happened to an entity. Concrete events embed
// BaseEvent and add exported fields that form the published payload.
type DomainEvent interface {
	EventID() uuid.UUID
	AggregateID() uuid.UUID
	AggregateType() string
	RoutingKey() string
	OccurredAt() time.Time
	CorrelationID() string
}

// BaseEvent implements the DomainEvent envelope.
type BaseEvent struct {
	eventID       uuid.UUID
	aggregateID   uuid.UUID
	aggregateType string
	routingKey    string
	occurredAt    time.Time
	correlationID string
}

// NewBaseEvent creates the envelope for an event about aggregateID.
func NewBaseEvent(aggregateID uuid.UUID, aggregateType, routingKey string) BaseEvent {
	return BaseEvent{
		eventID:       uuid.New(),
		aggregateID:   aggregateID,
		aggregateType: aggregateType,
		routingKey:    routingKey,
		occurredAt:    time.Now().UTC(),
	}
}

func (e BaseEvent) EventID() uuid.UUID     { return e.eventID }
func (e BaseEvent) AggregateID() uuid.UUID { return e.aggregateID }
func (e BaseEvent) AggregateType() string  { return e.aggregateType }
func (e BaseEvent) RoutingKey() string     { return e.routingKey }
func (e BaseEvent) OccurredAt() time.Time  { return e.occurredAt }
func (e BaseEvent) CorrelationID() string  { return e.correlationID }

// SetCorrelationID ties the event to the request that caused it.
func (e *BaseEvent) SetCorrelationID(id string) {
	e.correlationID = id
}
