package commands

import (
	"context"

	sharedApplication "github.com/felixgeelhaar/folio/internal/shared/application"
	"github.com/felixgeelhaar/folio/internal/shared/domain"
	"github.com/felixgeelhaar/folio/internal/shared/infrastructure/outbox"
)

// saveEvents writes events to the outbox in the transaction carried by txCtx.
func saveEvents(txCtx context.Context, outboxRepo outbox.Repository, events []domain.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	sharedApplication.StampEvents(txCtx, events)

	msgs, err := outbox.NewMessages(events)
	if err != nil {
		return err
	}
	return outboxRepo.SaveBatch(txCtx, msgs)
}
