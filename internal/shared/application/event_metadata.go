package application

import (
	"context"

	"github.com/felixgeelhaar/folio/internal/shared/domain"
	"github.com/felixgeelhaar/folio/pkg/observability"
)

type correlationSetter interface {
	SetCorrelationID(id string)
}

// StampEvents copies the request's correlation ID onto every event that accepts one.
func StampEvents(ctx context.Context, events []domain.DomainEvent) {
	id := observability.CorrelationIDFromContext(ctx)
	if id == "" {
		return
	}
	for _, event := range events {
		if setter, ok := event.(correlationSetter); ok {
			setter.SetCorrelationID(id)
		}
	}
}
