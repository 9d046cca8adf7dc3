package eventbus

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingConsumer struct{ err error }

func (c failingConsumer) EventTypes() []string { return []string{"content.page.saved"} }

func (c failingConsumer) Handle(context.Context, *ConsumedEvent) error { return c.err }

func TestSettle(t *testing.T) {
	tests := []struct {
		name        string
		out         outcome
		redelivered bool
		want        settlement
	}{
		{"handled", handled, false, ack},
		{"handled after redelivery", handled, true, ack},
		{"first failure is requeued", failed, false, requeue},
		{"second failure is discarded", failed, true, discard},
		{"malformed is discarded", malformed, false, discard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, settle(tt.out, tt.redelivered))
		})
	}
}

func TestDeliver(t *testing.T) {
	ctx := context.Background()
	registry := NewConsumerRegistry(nil)
	logger := registry.logger

	out, err := deliver(ctx, registry, logger, []byte("<html>"), "content.page.saved")
	assert.Equal(t, malformed, out)
	assert.Error(t, err)

	body, err := (&ConsumedEvent{EventID: uuid.New(), RoutingKey: "content.page.saved"}).Encode()
	require.NoError(t, err)

	out, err = deliver(ctx, registry, logger, body, "")
	assert.Equal(t, handled, out)
	assert.NoError(t, err)

	boom := errors.New("redis down")
	registry.Register(failingConsumer{err: boom})
	out, err = deliver(ctx, registry, logger, body, "")
	assert.Equal(t, failed, out)
	assert.ErrorIs(t, err, boom)
}
