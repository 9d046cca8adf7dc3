package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/folio/internal/content/domain"
	"github.com/felixgeelhaar/folio/internal/content/section"
	"github.com/felixgeelhaar/folio/internal/content/template"
	sharedApplication "github.com/felixgeelhaar/folio/internal/shared/application"
	"github.com/felixgeelhaar/folio/internal/shared/infrastructure/outbox"
)

// TemplateLookup finds section templates. *template.Registry satisfies it.
type TemplateLookup interface {
	Get(key string) (*template.Definition, bool)
}

// DataValidator checks section data against a template. *section.Validator satisfies it.
type DataValidator interface {
	Validate(data section.Data, tmpl *template.Definition) error
}

// SaveSectionCommand creates a section, or updates it when SectionID is set.
type SaveSectionCommand struct {
	PageSlug     string
	SectionID    uuid.UUID
	TemplateKey  string
	Slot         string
	Position     int
	Anchor       string
	Locale       string
	Data         section.Data
	Active       *bool
	VisibleFrom  *time.Time
	VisibleUntil *time.Time
}

// SaveSectionResult contains the result of saving a section.
type SaveSectionResult struct {
	SectionID uuid.UUID
	Created   bool
}

// SaveSectionHandler handles the SaveSectionCommand.
type SaveSectionHandler struct {
	pages      domain.PageRepository
	sections   section.Repository
	templates  TemplateLookup
	validator  DataValidator
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	logger     *slog.Logger
}

// NewSaveSectionHandler creates a new SaveSectionHandler.
func NewSaveSectionHandler(
	pages domain.PageRepository,
	sections section.Repository,
	templates TemplateLookup,
	validator DataValidator,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
) *SaveSectionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SaveSectionHandler{
		pages:      pages,
		sections:   sections,
		templates:  templates,
		validator:  validator,
		outboxRepo: outboxRepo,
		uow:        uow,
		logger:     logger,
	}
}

// Handle executes the SaveSectionCommand. The data is validated against the
// template before anything is written.
func (h *SaveSectionHandler) Handle(ctx context.Context, cmd SaveSectionCommand) (*SaveSectionResult, error) {
	page, err := h.pages.FindBySlug(ctx, domain.NormalizeSlug(cmd.PageSlug))
	if err != nil {
		return nil, err
	}

	tmpl, ok := h.templates.Get(cmd.TemplateKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s", section.ErrUnknownTemplate, cmd.TemplateKey)
	}
	cmd.Slot = strings.TrimSpace(cmd.Slot)
	if !tmpl.AllowsSlot(cmd.Slot) {
		return nil, fmt.Errorf("%w: %s does not allow %q", section.ErrSlotNotAllowed, tmpl.Key, cmd.Slot)
	}
	if err := h.validator.Validate(cmd.Data, tmpl); err != nil {
		return nil, err
	}

	var result *SaveSectionResult
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		s, created, err := h.load(txCtx, page, cmd)
		if err != nil {
			return err
		}

		s.SetData(cmd.Data)
		s.SetAnchor(cmd.Anchor)
		s.SetLocale(cmd.Locale)
		if cmd.Active != nil {
			if *cmd.Active {
				s.Activate()
			} else {
				s.Deactivate()
			}
		}
		if err := s.SetVisibility(cmd.VisibleFrom, cmd.VisibleUntil); err != nil {
			return err
		}

		if err := h.sections.Save(txCtx, s); err != nil {
			return err
		}

		s.Record(section.NewSavedEvent(s, page.Slug()))
		if err := saveEvents(txCtx, h.outboxRepo, s.PullEvents()); err != nil {
			return err
		}

		result = &SaveSectionResult{SectionID: s.ID(), Created: created}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.logger.InfoContext(ctx, "section saved",
		"page", page.Slug(),
		"section_id", result.SectionID,
		"template_key", tmpl.Key,
		"created", result.Created,
	)
	return result, nil
}

func (h *SaveSectionHandler) load(ctx context.Context, page *domain.Page, cmd SaveSectionCommand) (*section.Section, bool, error) {
	if cmd.SectionID == uuid.Nil {
		s, err := section.NewSection(page.ID(), cmd.TemplateKey, cmd.Slot, cmd.Position)
		return s, true, err
	}

	s, err := h.sections.FindByID(ctx, cmd.SectionID)
	if err != nil {
		return nil, false, err
	}
	if s.PageID() != page.ID() {
		return nil, false, section.ErrSectionNotFound
	}
	if err := s.Place(cmd.TemplateKey, cmd.Slot, cmd.Position); err != nil {
		return nil, false, err
	}
	return s, false, nil
}
