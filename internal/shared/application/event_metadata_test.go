package application

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/folio/internal/shared/domain"
	"github.com/felixgeelhaar/folio/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stampedEvent struct {
	domain.BaseEvent
}

type plainEvent struct {
	id uuid.UUID
}

func (e plainEvent) EventID() uuid.UUID     { return e.id }
func (e plainEvent) AggregateID() uuid.UUID { return e.id }
func (e plainEvent) AggregateType() string  { return "Plain" }
func (e plainEvent) RoutingKey() string     { return "plain.happened" }
func (e plainEvent) OccurredAt() time.Time  { return time.Time{} }
func (e plainEvent) CorrelationID() string  { return "" }

func TestStampEvents(t *testing.T) {
	ctx := observability.WithCorrelationID(context.Background(), "corr-42")

	first := &stampedEvent{BaseEvent: domain.NewBaseEvent(uuid.New(), "Section", "content.section.saved")}
	second := &stampedEvent{BaseEvent: domain.NewBaseEvent(uuid.New(), "Section", "content.section.deleted")}
	plain := plainEvent{id: uuid.New()}

	StampEvents(ctx, []domain.DomainEvent{first, second, plain})

	assert.Equal(t, "corr-42", first.CorrelationID())
	assert.Equal(t, "corr-42", second.CorrelationID())
	assert.Empty(t, plain.CorrelationID())
}

func TestStampEvents_NoCorrelationID(t *testing.T) {
	event := &stampedEvent{BaseEvent: domain.NewBaseEvent(uuid.New(), "Section", "content.section.saved")}

	StampEvents(context.Background(), []domain.DomainEvent{event})

	assert.Empty(t, event.CorrelationID())
}
