package section

import (
	"github.com/felixgeelhaar/folio/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	AggregateType = "Section"

	RoutingKeySaved   = "content.section.saved"
	RoutingKeyDeleted = "content.section.deleted"
)

// SavedEvent is raised after a section is created or updated.
type SavedEvent struct {
	domain.BaseEvent
	SectionID   uuid.UUID `json:"section_id"`
	PageID      uuid.UUID `json:"page_id"`
	PageSlug    string    `json:"page_slug"`
	TemplateKey string    `json:"template_key"`
	Slot        string    `json:"slot"`
}

// NewSavedEvent describes s being saved on the page with slug pageSlug.
func NewSavedEvent(s *Section, pageSlug string) *SavedEvent {
	return &SavedEvent{
		BaseEvent:   domain.NewBaseEvent(s.ID(), AggregateType, RoutingKeySaved),
		SectionID:   s.ID(),
		PageID:      s.PageID(),
		PageSlug:    pageSlug,
		TemplateKey: s.TemplateKey(),
		Slot:        s.Slot(),
	}
}

// DeletedEvent is raised after a section is removed.
type DeletedEvent struct {
	domain.BaseEvent
	SectionID uuid.UUID `json:"section_id"`
	PageID    uuid.UUID `json:"page_id"`
	PageSlug  string    `json:"page_slug"`
}

// NewDeletedEvent describes s being removed from the page with slug pageSlug.
func NewDeletedEvent(s *Section, pageSlug string) *DeletedEvent {
	return &DeletedEvent{
		BaseEvent: domain.NewBaseEvent(s.ID(), AggregateType, RoutingKeyDeleted),
		SectionID: s.ID(),
		PageID:    s.PageID(),
		PageSlug:  pageSlug,
	}
}
