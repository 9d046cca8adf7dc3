// Package domain holds the page aggregate that sections are placed on.
package domain

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"

	shared "github.com/felixgeelhaar/folio/internal/shared/domain"
)

var (
	ErrPageNotFound   = errors.New("page not found")
	ErrInvalidSlug    = errors.New("page slug must be lowercase letters, digits and dashes")
	ErrEmptyPageTitle = errors.New("page title is required")
	ErrDuplicatePage  = errors.New("page slug already exists")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Page is an addressable page made of sections.
type Page struct {
	shared.BaseEntity
	slug      string
	title     string
	locale    string
	published bool
}

// NewPage creates an unpublished page.
func NewPage(slug, title, locale string) (*Page, error) {
	p := &Page{BaseEntity: shared.NewBaseEntity()}
	if err := p.setSlug(slug); err != nil {
		return nil, err
	}
	if err := p.Rename(title); err != nil {
		return nil, err
	}
	p.locale = strings.TrimSpace(locale)
	return p, nil
}

// RehydratePage recreates a page from persisted state.
func RehydratePage(base shared.BaseEntity, slug, title, locale string, published bool) *Page {
	return &Page{
		BaseEntity: base,
		slug:       slug,
		title:      title,
		locale:     locale,
		published:  published,
	}
}

func (p *Page) Slug() string      { return p.slug }
func (p *Page) Title() string     { return p.title }
func (p *Page) Locale() string    { return p.locale }
func (p *Page) IsPublished() bool { return p.published }

// NormalizeSlug lowercases and trims a slug for lookup.
func NormalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

func (p *Page) setSlug(slug string) error {
	slug = NormalizeSlug(slug)
	if !slugPattern.MatchString(slug) {
		return ErrInvalidSlug
	}
	p.slug = slug
	return nil
}

// Rename changes the page title.
func (p *Page) Rename(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyPageTitle
	}
	p.title = title
	p.Touch()
	return nil
}

// SetLocale changes the page's default locale. Empty means the site default.
func (p *Page) SetLocale(locale string) {
	p.locale = strings.TrimSpace(locale)
	p.Touch()
}

// Publish makes the page renderable.
func (p *Page) Publish() {
	p.published = true
	p.Touch()
}

// Unpublish hides the page.
func (p *Page) Unpublish() {
	p.published = false
	p.Touch()
}

// PageRepository persists pages.
type PageRepository interface {
	FindBySlug(ctx context.Context, slug string) (*Page, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Page, error)
	List(ctx context.Context) ([]*Page, error)
	Save(ctx context.Context, p *Page) error
}
