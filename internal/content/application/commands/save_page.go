package commands

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/folio/internal/content/domain"
	sharedApplication "github.com/felixgeelhaar/folio/internal/shared/application"
	"github.com/felixgeelhaar/folio/internal/shared/infrastructure/outbox"
)

// SavePageCommand creates the page with Slug or updates it.
type SavePageCommand struct {
	Slug      string
	Title     string
	Locale    string
	Published bool
}

// SavePageResult contains the result of saving a page.
type SavePageResult struct {
	PageID  uuid.UUID
	Slug    string
	Created bool
}

// SavePageHandler handles the SavePageCommand.
type SavePageHandler struct {
	pages      domain.PageRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewSavePageHandler creates a new SavePageHandler.
func NewSavePageHandler(pages domain.PageRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *SavePageHandler {
	return &SavePageHandler{pages: pages, outboxRepo: outboxRepo, uow: uow}
}

// Handle executes the SavePageCommand.
func (h *SavePageHandler) Handle(ctx context.Context, cmd SavePageCommand) (*SavePageResult, error) {
	var result *SavePageResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		page, err := h.pages.FindBySlug(txCtx, domain.NormalizeSlug(cmd.Slug))
		created := false
		switch {
		case errors.Is(err, domain.ErrPageNotFound):
			page, err = domain.NewPage(cmd.Slug, cmd.Title, cmd.Locale)
			if err != nil {
				return err
			}
			created = true
		case err != nil:
			return err
		default:
			if err := page.Rename(cmd.Title); err != nil {
				return err
			}
			page.SetLocale(cmd.Locale)
		}

		if cmd.Published {
			page.Publish()
		} else {
			page.Unpublish()
		}

		if err := h.pages.Save(txCtx, page); err != nil {
			return err
		}

		page.Record(domain.NewPageSavedEvent(page))
		if err := saveEvents(txCtx, h.outboxRepo, page.PullEvents()); err != nil {
			return err
		}

		result = &SavePageResult{PageID: page.ID(), Slug: page.Slug(), Created: created}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
