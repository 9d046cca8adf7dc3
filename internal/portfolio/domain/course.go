package domain

import (
	"context"
	"strings"
	"time"

	shared "github.com/felixgeelhaar/folio/internal/shared/domain"
)

// Translated course fields.
const (
	CourseTitle       = "title"
	CourseDescription = "description"
)

// Course is a completed course or certification.
type Course struct {
	shared.BaseEntity
	listing
	institution string
	url         string
	completedOn *time.Time
}

// NewCourse creates a visible course.
func NewCourse(institution string) (*Course, error) {
	institution = strings.TrimSpace(institution)
	if institution == "" {
		return nil, ErrEmptyName
	}
	return &Course{BaseEntity: shared.NewBaseEntity(), listing: newListing(), institution: institution}, nil
}

// RehydrateCourse recreates a course from persisted state.
func RehydrateCourse(
	base shared.BaseEntity,
	institution, url string,
	completedOn *time.Time,
	visible bool,
	position int,
	translations Translations,
) *Course {
	return &Course{
		BaseEntity:  base,
		listing:     rehydrateListing(visible, position, translations),
		institution: institution,
		url:         url,
		completedOn: completedOn,
	}
}

func (c *Course) Institution() string     { return c.institution }
func (c *Course) URL() string             { return c.url }
func (c *Course) CompletedOn() *time.Time { return c.completedOn }

func (c *Course) SetURL(url string) {
	c.url = strings.TrimSpace(url)
}

// Complete records the completion date, truncated to the day.
func (c *Course) Complete(on time.Time) {
	day := time.Date(on.Year(), on.Month(), on.Day(), 0, 0, 0, 0, time.UTC)
	c.completedOn = &day
}

// CourseRepository persists courses.
type CourseRepository interface {
	// FindVisible returns visible courses ordered by position, most recent first.
	FindVisible(ctx context.Context) ([]*Course, error)
	Save(ctx context.Context, c *Course) error
}
