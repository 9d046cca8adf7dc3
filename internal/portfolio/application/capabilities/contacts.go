package capabilities

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/folio/internal/capability/sdk"
	"github.com/felixgeelhaar/folio/internal/portfolio/domain"
)

// ContactChannelsProvider lists visible contact channels.
type ContactChannelsProvider struct {
	def  *sdk.CapabilityDefinition
	repo domain.ContactChannelRepository
}

// NewContactChannelsProvider creates the contact-channels.visible.v1 provider.
func NewContactChannelsProvider(repo domain.ContactChannelRepository) *ContactChannelsProvider {
	return &ContactChannelsProvider{
		def: sdk.NewDefinition(KeyContactChannelsVisible, "Visible contact channels in display order.",
			sdk.WithParameter(limitParam),
			sdk.WithParameter(localeParam),
			sdk.WithReturnType("array<ContactChannel>"),
			sdk.Public(),
		),
		repo: repo,
	}
}

func (p *ContactChannelsProvider) Definition() sdk.Definition {
	return p.def
}

func (p *ContactChannelsProvider) Execute(ctx context.Context, params sdk.Parameters, ec *sdk.ExecutionContext) (any, error) {
	channels, err := p.repo.FindVisible(ctx)
	if err != nil {
		return nil, fmt.Errorf("load contact channels: %w", err)
	}

	locale, fallback := locales(params, ec)
	out := make([]map[string]any, 0, len(channels))
	for _, c := range channels {
		label := c.Text(domain.ContactLabel, locale, fallback)
		if label == "" {
			label = c.Value()
		}
		out = append(out, map[string]any{
			"id":    c.ID().String(),
			"kind":  c.Kind(),
			"label": label,
			"value": c.Value(),
			"url":   c.URL(),
			"icon":  c.Icon(),
		})
	}
	return sdk.ApplyLimit(out, params), nil
}
