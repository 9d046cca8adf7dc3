package capabilities

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/folio/internal/capability/sdk"
	"github.com/felixgeelhaar/folio/internal/portfolio/domain"
)

// ProjectsProvider lists visible projects.
type ProjectsProvider struct {
	def  *sdk.CapabilityDefinition
	repo domain.ProjectRepository
}

// NewProjectsProvider creates the projects.visible.v1 provider.
func NewProjectsProvider(repo domain.ProjectRepository) *ProjectsProvider {
	return &ProjectsProvider{
		def: sdk.NewDefinition(KeyProjectsVisible, "Visible portfolio projects in display order.",
			sdk.WithParameter(limitParam),
			sdk.WithParameter(localeParam),
			sdk.WithParameter(sdk.ParameterSpec{
				Name:        "featured",
				Type:        "boolean",
				Default:     false,
				Description: "Only return featured projects.",
			}),
			sdk.WithReturnType("array<Project>"),
			sdk.Public(),
		),
		repo: repo,
	}
}

func (p *ProjectsProvider) Definition() sdk.Definition {
	return p.def
}

func (p *ProjectsProvider) Execute(ctx context.Context, params sdk.Parameters, ec *sdk.ExecutionContext) (any, error) {
	projects, err := p.repo.FindVisible(ctx)
	if err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}

	featuredOnly := flag(params, "featured")
	locale, fallback := locales(params, ec)

	out := make([]map[string]any, 0, len(projects))
	for _, pr := range projects {
		if featuredOnly && !pr.IsFeatured() {
			continue
		}
		var image any
		if id := pr.ImageID(); id != nil {
			image = *id
		}
		out = append(out, map[string]any{
			"id":           pr.ID().String(),
			"slug":         pr.Slug(),
			"title":        pr.Text(domain.ProjectTitle, locale, fallback),
			"summary":      pr.Text(domain.ProjectSummary, locale, fallback),
			"url":          pr.URL(),
			"image":        image,
			"technologies": pr.Technologies(),
			"featured":     pr.IsFeatured(),
		})
	}
	return sdk.ApplyLimit(out, params), nil
}
