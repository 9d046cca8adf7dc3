package commands

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/folio/internal/content/domain"
	"github.com/felixgeelhaar/folio/internal/content/section"
	sharedApplication "github.com/felixgeelhaar/folio/internal/shared/application"
	"github.com/felixgeelhaar/folio/internal/shared/infrastructure/outbox"
)

// DeleteSectionCommand removes a section.
type DeleteSectionCommand struct {
	SectionID uuid.UUID
}

// DeleteSectionHandler handles the DeleteSectionCommand.
type DeleteSectionHandler struct {
	pages      domain.PageRepository
	sections   section.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	logger     *slog.Logger
}

// NewDeleteSectionHandler creates a new DeleteSectionHandler.
func NewDeleteSectionHandler(
	pages domain.PageRepository,
	sections section.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
) *DeleteSectionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeleteSectionHandler{
		pages:      pages,
		sections:   sections,
		outboxRepo: outboxRepo,
		uow:        uow,
		logger:     logger,
	}
}

// Handle executes the DeleteSectionCommand.
func (h *DeleteSectionHandler) Handle(ctx context.Context, cmd DeleteSectionCommand) error {
	var slug string
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		s, err := h.sections.FindByID(txCtx, cmd.SectionID)
		if err != nil {
			return err
		}
		page, err := h.pages.FindByID(txCtx, s.PageID())
		if err != nil {
			return err
		}
		slug = page.Slug()

		if err := h.sections.Delete(txCtx, s.ID()); err != nil {
			return err
		}

		s.Record(section.NewDeletedEvent(s, slug))
		return saveEvents(txCtx, h.outboxRepo, s.PullEvents())
	})
	if err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "section deleted", "page", slug, "section_id", cmd.SectionID)
	return nil
}
