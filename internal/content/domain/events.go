package domain

import (
	shared "github.com/felixgeelhaar/folio/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	AggregateType = "Page"

	RoutingKeyPageSaved = "content.page.saved"
)

// PageSavedEvent is raised after a page is created or changed.
type PageSavedEvent struct {
	shared.BaseEvent
	PageID    uuid.UUID `json:"page_id"`
	PageSlug  string    `json:"page_slug"`
	Published bool      `json:"published"`
}

// NewPageSavedEvent describes p being saved.
func NewPageSavedEvent(p *Page) *PageSavedEvent {
	return &PageSavedEvent{
		BaseEvent: shared.NewBaseEvent(p.ID(), AggregateType, RoutingKeyPageSaved),
		PageID:    p.ID(),
		PageSlug:  p.Slug(),
		Published: p.IsPublished(),
	}
}
