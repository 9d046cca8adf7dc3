package capabilities

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/folio/internal/capability/sdk"
	"github.com/felixgeelhaar/folio/internal/portfolio/domain"
)

// TechnologiesProvider groups visible technologies by category.
type TechnologiesProvider struct {
	def  *sdk.CapabilityDefinition
	repo domain.TechnologyRepository
}

// NewTechnologiesProvider creates the technologies.by-category.v1 provider.
func NewTechnologiesProvider(repo domain.TechnologyRepository) *TechnologiesProvider {
	return &TechnologiesProvider{
		def: sdk.NewDefinition(KeyTechnologiesByCategory,
			"Visible technologies grouped by category. The limit applies to categories.",
			sdk.WithParameter(limitParam),
			sdk.WithParameter(localeParam),
			sdk.WithReturnType("array<{category, items: array<Technology>}>"),
			sdk.Public(),
		),
		repo: repo,
	}
}

func (p *TechnologiesProvider) Definition() sdk.Definition {
	return p.def
}

// Execute returns one group per category that has visible technologies, in
// category order. Technologies whose category is gone are left out.
func (p *TechnologiesProvider) Execute(ctx context.Context, params sdk.Parameters, ec *sdk.ExecutionContext) (any, error) {
	categories, err := p.repo.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load technology categories: %w", err)
	}
	technologies, err := p.repo.FindVisible(ctx)
	if err != nil {
		return nil, fmt.Errorf("load technologies: %w", err)
	}

	items := make(map[uuid.UUID][]map[string]any, len(categories))
	for _, t := range technologies {
		items[t.CategoryID()] = append(items[t.CategoryID()], map[string]any{
			"name": t.Name(),
			"icon": t.Icon(),
		})
	}

	locale, fallback := locales(params, ec)
	out := make([]map[string]any, 0, len(categories))
	for _, c := range categories {
		group, ok := items[c.ID()]
		if !ok {
			continue
		}
		name := c.Text(domain.CategoryName, locale, fallback)
		if name == "" {
			name = c.Slug()
		}
		out = append(out, map[string]any{
			"category": map[string]any{"slug": c.Slug(), "name": name},
			"items":    group,
		})
	}
	return sdk.ApplyLimit(out, params), nil
}
