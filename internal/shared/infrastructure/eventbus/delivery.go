package eventbus

import (
	"context"
	"log/slog"
	"time"
)

// outcome is what happened to one delivered body.
type outcome int

const (
	handled outcome = iota
	// malformed bodies never become valid, so they are not retried.
	malformed
	failed
)

// deliver decodes body and dispatches it through registry.
func deliver(ctx context.Context, registry *ConsumerRegistry, logger *slog.Logger, body []byte, routingKey string) (outcome, error) {
	event, err := Decode(body, routingKey)
	if err != nil {
		logger.Error("undecodable event", "routing_key", routingKey, "size", len(body), "error", err)
		return malformed, err
	}

	start := time.Now()
	if err := registry.Dispatch(ctx, event); err != nil {
		return failed, err
	}
	logger.Debug("event dispatched",
		"routing_key", event.RoutingKey,
		"event_id", event.EventID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return handled, nil
}

// settlement is how a broker delivery is answered.
type settlement int

const (
	ack settlement = iota
	requeue
	discard
)

// settle maps an outcome to a broker answer. A failed event is requeued once;
// the second failure discards it so one bad consumer cannot stall the queue.
// The outbox already retried publishing, and a page cache entry expires on
// its own.
func settle(out outcome, redelivered bool) settlement {
	switch out {
	case handled:
		return ack
	case failed:
		if !redelivered {
			return requeue
		}
	}
	return discard
}
