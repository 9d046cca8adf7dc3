package domain

import (
	"context"
	"strings"

	shared "github.com/felixgeelhaar/folio/internal/shared/domain"
)

// ContactLabel is the translated label of a contact channel.
const ContactLabel = "label"

// ContactChannel is one way to reach the portfolio owner.
type ContactChannel struct {
	shared.BaseEntity
	listing
	kind  string
	value string
	url   string
	icon  string
}

// NewContactChannel creates a visible channel of kind, e.g. "email".
func NewContactChannel(kind, value string) (*ContactChannel, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	value = strings.TrimSpace(value)
	if kind == "" || value == "" {
		return nil, ErrEmptyName
	}
	return &ContactChannel{
		BaseEntity: shared.NewBaseEntity(),
		listing:    newListing(),
		kind:       kind,
		value:      value,
	}, nil
}

// RehydrateContactChannel recreates a channel from persisted state.
func RehydrateContactChannel(
	base shared.BaseEntity,
	kind, value, url, icon string,
	visible bool,
	position int,
	translations Translations,
) *ContactChannel {
	return &ContactChannel{
		BaseEntity: base,
		listing:    rehydrateListing(visible, position, translations),
		kind:       kind,
		value:      value,
		url:        url,
		icon:       icon,
	}
}

func (c *ContactChannel) Kind() string  { return c.kind }
func (c *ContactChannel) Value() string { return c.value }
func (c *ContactChannel) Icon() string  { return c.icon }

// URL returns the link for the channel, derived from its kind when unset.
func (c *ContactChannel) URL() string {
	if c.url != "" {
		return c.url
	}
	switch c.kind {
	case "email":
		return "mailto:" + c.value
	case "phone":
		return "tel:" + strings.ReplaceAll(c.value, " ", "")
	}
	return ""
}

// ExplicitURL returns the stored link without deriving one.
func (c *ContactChannel) ExplicitURL() string {
	return c.url
}

func (c *ContactChannel) SetURL(url string) {
	c.url = strings.TrimSpace(url)
}

func (c *ContactChannel) SetIcon(icon string) {
	c.icon = strings.TrimSpace(icon)
}

// ContactChannelRepository persists contact channels.
type ContactChannelRepository interface {
	FindVisible(ctx context.Context) ([]*ContactChannel, error)
	Save(ctx context.Context, c *ContactChannel) error
}
