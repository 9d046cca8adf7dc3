package domain

import (
	"context"
	"strings"

	shared "github.com/felixgeelhaar/folio/internal/shared/domain"
)

// Translated project fields.
const (
	ProjectTitle   = "title"
	ProjectSummary = "summary"
)

// Project is a piece of work shown on the portfolio.
type Project struct {
	shared.BaseEntity
	listing
	slug         string
	url          string
	imageID      *int
	technologies []string
	featured     bool
}

// NewProject creates a visible project.
func NewProject(slug string) (*Project, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrEmptySlug
	}
	return &Project{BaseEntity: shared.NewBaseEntity(), listing: newListing(), slug: slug}, nil
}

// RehydrateProject recreates a project from persisted state.
func RehydrateProject(
	base shared.BaseEntity,
	slug, url string,
	imageID *int,
	technologies []string,
	featured, visible bool,
	position int,
	translations Translations,
) *Project {
	return &Project{
		BaseEntity:   base,
		listing:      rehydrateListing(visible, position, translations),
		slug:         slug,
		url:          url,
		imageID:      imageID,
		technologies: technologies,
		featured:     featured,
	}
}

func (p *Project) Slug() string     { return p.slug }
func (p *Project) URL() string      { return p.url }
func (p *Project) ImageID() *int    { return p.imageID }
func (p *Project) IsFeatured() bool { return p.featured }

// Technologies returns the technology names used by the project.
func (p *Project) Technologies() []string {
	return append([]string(nil), p.technologies...)
}

func (p *Project) SetURL(url string) {
	p.url = strings.TrimSpace(url)
}

func (p *Project) SetImage(id *int) {
	p.imageID = id
}

func (p *Project) SetTechnologies(names []string) {
	p.technologies = p.technologies[:0:0]
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			p.technologies = append(p.technologies, n)
		}
	}
}

func (p *Project) SetFeatured(featured bool) {
	p.featured = featured
}

// ProjectRepository persists projects.
type ProjectRepository interface {
	// FindVisible returns visible projects ordered by position then slug.
	FindVisible(ctx context.Context) ([]*Project, error)
	Save(ctx context.Context, p *Project) error
}
