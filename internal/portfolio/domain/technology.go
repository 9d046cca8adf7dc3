package domain

import (
	"context"
	"strings"

	"github.com/google/uuid"

	shared "github.com/felixgeelhaar/folio/internal/shared/domain"
)

// CategoryName is the translated name of a technology category.
const CategoryName = "name"

// TechnologyCategory groups technologies, e.g. "languages".
type TechnologyCategory struct {
	shared.BaseEntity
	listing
	slug string
}

// NewTechnologyCategory creates a category.
func NewTechnologyCategory(slug string) (*TechnologyCategory, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrEmptySlug
	}
	return &TechnologyCategory{BaseEntity: shared.NewBaseEntity(), listing: newListing(), slug: slug}, nil
}

// RehydrateTechnologyCategory recreates a category from persisted state.
func RehydrateTechnologyCategory(base shared.BaseEntity, slug string, position int, translations Translations) *TechnologyCategory {
	return &TechnologyCategory{
		BaseEntity: base,
		listing:    rehydrateListing(true, position, translations),
		slug:       slug,
	}
}

func (c *TechnologyCategory) Slug() string { return c.slug }

// Technology is a tool or language listed under a category.
type Technology struct {
	shared.BaseEntity
	listing
	categoryID uuid.UUID
	name       string
	icon       string
}

// NewTechnology creates a visible technology in category.
func NewTechnology(categoryID uuid.UUID, name string) (*Technology, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	return &Technology{
		BaseEntity: shared.NewBaseEntity(),
		listing:    newListing(),
		categoryID: categoryID,
		name:       name,
	}, nil
}

// RehydrateTechnology recreates a technology from persisted state.
func RehydrateTechnology(base shared.BaseEntity, categoryID uuid.UUID, name, icon string, visible bool, position int) *Technology {
	return &Technology{
		BaseEntity: base,
		listing:    rehydrateListing(visible, position, nil),
		categoryID: categoryID,
		name:       name,
		icon:       icon,
	}
}

func (t *Technology) CategoryID() uuid.UUID { return t.categoryID }
func (t *Technology) Name() string          { return t.name }
func (t *Technology) Icon() string          { return t.icon }

func (t *Technology) SetIcon(icon string) {
	t.icon = strings.TrimSpace(icon)
}

// TechnologyRepository persists technologies and their categories.
type TechnologyRepository interface {
	// Categories returns every category ordered by position then slug.
	Categories(ctx context.Context) ([]*TechnologyCategory, error)
	// FindVisible returns visible technologies ordered by position then name.
	FindVisible(ctx context.Context) ([]*Technology, error)
	SaveCategory(ctx context.Context, c *TechnologyCategory) error
	Save(ctx context.Context, t *Technology) error
}
