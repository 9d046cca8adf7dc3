// Package section models page sections: one rendered block of a page whose
// free-form data is interpreted through a section template.
package section

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/felixgeelhaar/folio/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrSectionNotFound    = errors.New("section not found")
	ErrEmptyTemplateKey   = errors.New("section template key is required")
	ErrNegativePosition   = errors.New("section position must not be negative")
	ErrInvalidVisibility  = errors.New("section visibility window ends before it starts")
	ErrSlotNotAllowed     = errors.New("template does not allow this slot")
	ErrUnknownTemplate    = errors.New("unknown section template")
	ErrInvalidSectionData = errors.New("invalid section data")
)

// Data is the free-form content of a section, keyed by field name.
// Values are plain JSON-compatible types.
type Data map[string]any

// Clone returns a shallow copy. A nil Data clones to an empty one.
func (d Data) Clone() Data {
	out := make(Data, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Section is one block placed in a slot of a page.
type Section struct {
	domain.BaseEntity
	pageID       uuid.UUID
	templateKey  string
	slot         string
	position     int
	anchor       string
	data         Data
	active       bool
	visibleFrom  *time.Time
	visibleUntil *time.Time
	locale       string
}

// NewSection creates an active section with empty data.
func NewSection(pageID uuid.UUID, templateKey, slot string, position int) (*Section, error) {
	s := &Section{
		BaseEntity: domain.NewBaseEntity(),
		pageID:     pageID,
		data:       Data{},
		active:     true,
	}
	if err := s.Place(templateKey, slot, position); err != nil {
		return nil, err
	}
	return s, nil
}

// RehydrateSection recreates a section from persisted state.
func RehydrateSection(
	base domain.BaseEntity,
	pageID uuid.UUID,
	templateKey, slot string,
	position int,
	anchor string,
	data Data,
	active bool,
	visibleFrom, visibleUntil *time.Time,
	locale string,
) *Section {
	if data == nil {
		data = Data{}
	}
	return &Section{
		BaseEntity:   base,
		pageID:       pageID,
		templateKey:  templateKey,
		slot:         slot,
		position:     position,
		anchor:       anchor,
		data:         data,
		active:       active,
		visibleFrom:  visibleFrom,
		visibleUntil: visibleUntil,
		locale:       locale,
	}
}

func (s *Section) PageID() uuid.UUID        { return s.pageID }
func (s *Section) TemplateKey() string      { return s.templateKey }
func (s *Section) Slot() string             { return s.slot }
func (s *Section) Position() int            { return s.position }
func (s *Section) Anchor() string           { return s.anchor }
func (s *Section) IsActive() bool           { return s.active }
func (s *Section) VisibleFrom() *time.Time  { return s.visibleFrom }
func (s *Section) VisibleUntil() *time.Time { return s.visibleUntil }
func (s *Section) Locale() string           { return s.locale }

// Data returns a copy of the section data.
func (s *Section) Data() Data {
	return s.data.Clone()
}

// Place sets the template, slot and position of the section. An empty slot
// places the section outside any slot; templates that declare allowed slots
// reject that when the section is saved.
func (s *Section) Place(templateKey, slot string, position int) error {
	templateKey = strings.TrimSpace(templateKey)
	slot = strings.TrimSpace(slot)
	switch {
	case templateKey == "":
		return ErrEmptyTemplateKey
	case position < 0:
		return ErrNegativePosition
	}
	s.templateKey = templateKey
	s.slot = slot
	s.position = position
	s.Touch()
	return nil
}

// SetData replaces the section data with a copy of data.
func (s *Section) SetData(data Data) {
	s.data = data.Clone()
	s.Touch()
}

// SetAnchor sets the in-page anchor, without a leading '#'.
func (s *Section) SetAnchor(anchor string) {
	s.anchor = strings.TrimPrefix(strings.TrimSpace(anchor), "#")
	s.Touch()
}

// SetLocale restricts the section to one locale. Empty means every locale.
func (s *Section) SetLocale(locale string) {
	s.locale = strings.TrimSpace(locale)
	s.Touch()
}

// Activate makes the section renderable.
func (s *Section) Activate() {
	s.active = true
	s.Touch()
}

// Deactivate hides the section without deleting it.
func (s *Section) Deactivate() {
	s.active = false
	s.Touch()
}

// SetVisibility sets the optional publication window. Either bound may be nil.
func (s *Section) SetVisibility(from, until *time.Time) error {
	if from != nil && until != nil && until.Before(*from) {
		return ErrInvalidVisibility
	}
	s.visibleFrom = from
	s.visibleUntil = until
	s.Touch()
	return nil
}

// IsVisibleAt reports whether the section is active and inside its
// publication window at t. The window start is inclusive, the end exclusive.
func (s *Section) IsVisibleAt(t time.Time) bool {
	if !s.active {
		return false
	}
	if s.visibleFrom != nil && t.Before(*s.visibleFrom) {
		return false
	}
	if s.visibleUntil != nil && !t.Before(*s.visibleUntil) {
		return false
	}
	return true
}

// MatchesLocale reports whether the section renders for locale.
// Sections without a locale render everywhere.
func (s *Section) MatchesLocale(locale string) bool {
	return s.locale == "" || strings.EqualFold(s.locale, locale)
}

// Repository persists sections.
type Repository interface {
	// FindByPage returns the sections of a page ordered by slot and position.
	FindByPage(ctx context.Context, pageID uuid.UUID) ([]*Section, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Section, error)
	Save(ctx context.Context, s *Section) error
	Delete(ctx context.Context, id uuid.UUID) error
}
