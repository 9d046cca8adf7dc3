package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/folio/internal/content/domain"
)

// PageDTO is a page summary.
type PageDTO struct {
	ID        uuid.UUID `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Locale    string    `json:"locale,omitempty"`
	Published bool      `json:"published"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListPagesHandler lists every page, drafts included.
type ListPagesHandler struct {
	pages domain.PageRepository
}

// NewListPagesHandler creates a new ListPagesHandler.
func NewListPagesHandler(pages domain.PageRepository) *ListPagesHandler {
	return &ListPagesHandler{pages: pages}
}

// Handle returns the pages ordered by slug.
func (h *ListPagesHandler) Handle(ctx context.Context) ([]PageDTO, error) {
	pages, err := h.pages.List(ctx)
	if err != nil {
		return nil, err
	}

	dtos := make([]PageDTO, 0, len(pages))
	for _, p := range pages {
		dtos = append(dtos, PageDTO{
			ID:        p.ID(),
			Slug:      p.Slug(),
			Title:     p.Title(),
			Locale:    p.Locale(),
			Published: p.IsPublished(),
			UpdatedAt: p.UpdatedAt(),
		})
	}
	return dtos, nil
}
