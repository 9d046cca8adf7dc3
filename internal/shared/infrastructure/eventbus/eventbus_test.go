package eventbus_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/folio/internal/shared/domain"
	"github.com/felixgeelhaar/folio/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/folio/pkg/observability"
)

type recordingConsumer struct {
	types  []string
	events []*eventbus.ConsumedEvent
	err    error
}

func (c *recordingConsumer) EventTypes() []string { return c.types }

func (c *recordingConsumer) Handle(_ context.Context, event *eventbus.ConsumedEvent) error {
	c.events = append(c.events, event)
	return c.err
}

type pagePublished struct {
	domain.BaseEvent
	Slug string `json:"slug"`
}

func newPagePublished(slug string) *pagePublished {
	e := &pagePublished{BaseEvent: domain.NewBaseEvent(uuid.New(), "Page", "content.page.published"), Slug: slug}
	e.SetCorrelationID("corr-1")
	return e
}

func TestNewConsumedEvent(t *testing.T) {
	event := newPagePublished("home")

	envelope, err := eventbus.NewConsumedEvent(event)
	require.NoError(t, err)

	assert.Equal(t, event.EventID(), envelope.EventID)
	assert.Equal(t, event.AggregateID(), envelope.AggregateID)
	assert.Equal(t, "Page", envelope.AggregateType)
	assert.Equal(t, "content.page.published", envelope.RoutingKey)
	assert.Equal(t, "corr-1", envelope.Metadata.CorrelationID)

	var payload struct {
		Slug string `json:"slug"`
	}
	require.NoError(t, envelope.DecodePayload(&payload))
	assert.Equal(t, "home", payload.Slug)

	body, err := envelope.Encode()
	require.NoError(t, err)
	decoded, err := eventbus.Decode(body, "ignored")
	require.NoError(t, err)
	assert.Equal(t, envelope.EventID, decoded.EventID)
	assert.Equal(t, "content.page.published", decoded.RoutingKey)
}

func TestDecode_FallbackRoutingKey(t *testing.T) {
	body, err := json.Marshal(map[string]any{"event_id": uuid.New()})
	require.NoError(t, err)

	decoded, err := eventbus.Decode(body, "content.section.saved")
	require.NoError(t, err)
	assert.Equal(t, "content.section.saved", decoded.RoutingKey)

	_, err = eventbus.Decode([]byte("not json"), "x")
	assert.Error(t, err)
}

func TestConsumerRegistry_Dispatch(t *testing.T) {
	metrics := observability.NewInMemoryMetrics()
	registry := eventbus.NewConsumerRegistry(nil).WithMetrics(metrics)

	saved := &recordingConsumer{types: []string{"content.section.saved"}}
	both := &recordingConsumer{types: []string{"content.section.saved", "content.section.deleted"}}
	registry.Register(saved)
	registry.Register(both)

	assert.Equal(t, 3, registry.Len())
	assert.Equal(t, []string{"content.section.deleted", "content.section.saved"}, registry.EventTypes())

	ctx := context.Background()
	require.NoError(t, registry.Dispatch(ctx, &eventbus.ConsumedEvent{RoutingKey: "content.section.saved"}))
	require.NoError(t, registry.Dispatch(ctx, &eventbus.ConsumedEvent{RoutingKey: "content.section.deleted"}))
	require.NoError(t, registry.Dispatch(ctx, &eventbus.ConsumedEvent{RoutingKey: "unrelated"}))

	assert.Len(t, saved.events, 1)
	assert.Len(t, both.events, 2)
	assert.Equal(t, int64(2), metrics.GetCounter(observability.MetricEventsConsumed, observability.T("routing_key", "content.section.saved")))
}

func TestConsumerRegistry_DispatchRunsEveryConsumer(t *testing.T) {
	registry := eventbus.NewConsumerRegistry(nil)
	boom := errors.New("cache down")
	failing := &recordingConsumer{types: []string{"content.section.saved"}, err: boom}
	healthy := &recordingConsumer{types: []string{"content.section.saved"}}
	registry.Register(failing)
	registry.Register(healthy)

	err := registry.Dispatch(context.Background(), &eventbus.ConsumedEvent{RoutingKey: "content.section.saved"})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, healthy.events, 1)
}

func TestInProcessEventBus_Publish(t *testing.T) {
	bus := eventbus.NewInProcessEventBus(nil, nil)
	consumer := &recordingConsumer{types: []string{"content.page.published"}}
	bus.RegisterConsumer(consumer)

	envelope, err := eventbus.NewConsumedEvent(newPagePublished("about"))
	require.NoError(t, err)
	body, err := envelope.Encode()
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), envelope.RoutingKey, body))
	require.Len(t, consumer.events, 1)
	assert.Equal(t, envelope.EventID, consumer.events[0].EventID)

	assert.NoError(t, bus.Publish(context.Background(), "content.page.published", []byte("{broken")),
		"undecodable bodies are dropped")
	assert.Len(t, consumer.events, 1)
}

func TestInProcessEventBus_ConsumerFailureIsReturned(t *testing.T) {
	bus := eventbus.NewInProcessEventBus(nil, nil)
	boom := errors.New("boom")
	bus.RegisterConsumer(&recordingConsumer{types: []string{"content.page.published"}, err: boom})

	envelope, err := eventbus.NewConsumedEvent(newPagePublished("home"))
	require.NoError(t, err)
	body, err := envelope.Encode()
	require.NoError(t, err)

	assert.ErrorIs(t, bus.Publish(context.Background(), envelope.RoutingKey, body), boom)
}

func TestInProcessEventBus_StartBlocksUntilCancelled(t *testing.T) {
	bus := eventbus.NewInProcessEventBus(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, bus.Start(ctx), context.Canceled)
	assert.NoError(t, bus.Close())
}

var _ eventbus.Consumer = (*eventbus.InProcessEventBus)(nil)
var _ eventbus.Publisher = (*eventbus.InProcessEventBus)(nil)
var _ eventbus.Publisher = (*eventbus.RabbitMQPublisher)(nil)
var _ eventbus.Consumer = (*eventbus.RabbitMQConsumer)(nil)
