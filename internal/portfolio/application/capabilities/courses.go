package capabilities

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/folio/internal/capability/sdk"
	"github.com/felixgeelhaar/folio/internal/portfolio/domain"
)

// CoursesProvider lists visible courses.
type CoursesProvider struct {
	def  *sdk.CapabilityDefinition
	repo domain.CourseRepository
}

// NewCoursesProvider creates the courses.visible.v1 provider.
func NewCoursesProvider(repo domain.CourseRepository) *CoursesProvider {
	return &CoursesProvider{
		def: sdk.NewDefinition(KeyCoursesVisible, "Visible courses, most recently completed first.",
			sdk.WithParameter(limitParam),
			sdk.WithParameter(localeParam),
			sdk.WithReturnType("array<Course>"),
			sdk.Public(),
		),
		repo: repo,
	}
}

func (p *CoursesProvider) Definition() sdk.Definition {
	return p.def
}

func (p *CoursesProvider) Execute(ctx context.Context, params sdk.Parameters, ec *sdk.ExecutionContext) (any, error) {
	courses, err := p.repo.FindVisible(ctx)
	if err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}

	locale, fallback := locales(params, ec)
	out := make([]map[string]any, 0, len(courses))
	for _, c := range courses {
		var completed any
		if on := c.CompletedOn(); on != nil {
			completed = on.Format("2006-01-02")
		}
		out = append(out, map[string]any{
			"id":           c.ID().String(),
			"title":        c.Text(domain.CourseTitle, locale, fallback),
			"description":  c.Text(domain.CourseDescription, locale, fallback),
			"institution":  c.Institution(),
			"url":          c.URL(),
			"completed_on": completed,
		})
	}
	return sdk.ApplyLimit(out, params), nil
}
