// Package subscribers reacts to content events delivered by the event bus.
package subscribers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/folio/internal/content/application/queries"
	"github.com/felixgeelhaar/folio/internal/content/domain"
	"github.com/felixgeelhaar/folio/internal/content/section"
	"github.com/felixgeelhaar/folio/internal/shared/infrastructure/eventbus"
)

// CacheInvalidationSubscriber drops cached renders of a page when its
// sections or settings change.
type CacheInvalidationSubscriber struct {
	cache  queries.PageCache
	logger *slog.Logger
}

// NewCacheInvalidationSubscriber creates a subscriber that clears cache.
func NewCacheInvalidationSubscriber(cache queries.PageCache, logger *slog.Logger) *CacheInvalidationSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &CacheInvalidationSubscriber{cache: cache, logger: logger}
}

// EventTypes returns the event types this subscriber handles.
func (s *CacheInvalidationSubscriber) EventTypes() []string {
	return []string{
		section.RoutingKeySaved,
		section.RoutingKeyDeleted,
		domain.RoutingKeyPageSaved,
	}
}

// Handle clears every locale of the page named in the event.
func (s *CacheInvalidationSubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	var payload struct {
		PageSlug string `json:"page_slug"`
	}
	if err := event.DecodePayload(&payload); err != nil {
		return fmt.Errorf("decode %s: %w", event.RoutingKey, err)
	}
	if payload.PageSlug == "" {
		s.logger.WarnContext(ctx, "content event without page slug",
			"routing_key", event.RoutingKey,
			"event_id", event.EventID,
		)
		return nil
	}

	if err := s.cache.DeletePrefix(ctx, queries.PageCachePrefix(payload.PageSlug)); err != nil {
		return fmt.Errorf("invalidate page %s: %w", payload.PageSlug, err)
	}
	s.logger.DebugContext(ctx, "page cache invalidated",
		"page", payload.PageSlug,
		"routing_key", event.RoutingKey,
		"correlation_id", event.Metadata.CorrelationID,
	)
	return nil
}
