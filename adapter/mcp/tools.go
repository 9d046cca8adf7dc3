package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/folio/internal/capability/sdk"
	"github.com/felixgeelhaar/folio/internal/content/application/queries"
	"github.com/felixgeelhaar/folio/internal/content/template"
	"github.com/felixgeelhaar/folio/pkg/observability"
)

// CapabilityCatalog lists registered capabilities. *registry.Catalog satisfies it.
type CapabilityCatalog interface {
	Definitions() []sdk.Definition
	PublicDefinitions() []sdk.Definition
}

// CapabilityResolver runs capabilities. *registry.Resolver satisfies it.
type CapabilityResolver interface {
	Resolve(ctx context.Context, key sdk.Key, params sdk.Parameters) (any, error)
}

// TemplateCatalog lists section templates. *template.Registry satisfies it.
type TemplateCatalog interface {
	All() []*template.Definition
}

type PageRenderer interface {
	Handle(ctx context.Context, query queries.RenderPageQuery) (*queries.RenderedPage, error)
}

// Dependencies are the services MCP tools call into.
type Dependencies struct {
	Catalog    CapabilityCatalog
	Resolver   CapabilityResolver
	Templates  TemplateCatalog
	RenderPage PageRenderer
}

type capabilityInput struct {
	Parameters map[string]any `json:"parameters,omitempty"`
	Locale     string         `json:"locale,omitempty"`
}

type resolveInput struct {
	Key        string         `json:"key" jsonschema:"required"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Locale     string         `json:"locale,omitempty"`
}

type listCapabilitiesInput struct {
	IncludePrivate bool `json:"include_private,omitempty"`
}

type renderPageInput struct {
	Slug   string `json:"slug" jsonschema:"required"`
	Locale string `json:"locale,omitempty"`
	Drafts bool   `json:"drafts,omitempty"`
}

// RegisterTools registers one tool per public capability plus the generic
// catalog, resolve and render tools.
func RegisterTools(srv *mcp.Server, deps Dependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.Catalog == nil || deps.Resolver == nil {
		return errors.New("capability catalog and resolver are required")
	}

	for _, def := range deps.Catalog.PublicDefinitions() {
		registerCapabilityTool(srv, deps.Resolver, def)
	}

	srv.Tool("capabilities.list").
		Description("List registered capabilities with their parameters").
		Handler(func(ctx context.Context, input listCapabilitiesInput) (map[string]any, error) {
			defs := deps.Catalog.PublicDefinitions()
			if input.IncludePrivate {
				defs = deps.Catalog.Definitions()
			}
			out := make([]sdk.Descriptor, 0, len(defs))
			for _, def := range defs {
				out = append(out, sdk.Describe(def))
			}
			return map[string]any{"capabilities": out}, nil
		})

	srv.Tool("capabilities.resolve").
		Description("Resolve any capability by key. Unknown keys resolve to null.").
		Handler(func(ctx context.Context, input resolveInput) (map[string]any, error) {
			key, err := sdk.NewKey(input.Key)
			if err != nil {
				return nil, err
			}
			return resolve(ctx, deps.Resolver, key, input.Parameters, input.Locale)
		})

	if deps.RenderPage != nil {
		srv.Tool("pages.render").
			Description("Render a page with its visible sections in slot order").
			Handler(func(ctx context.Context, input renderPageInput) (*queries.RenderedPage, error) {
				return deps.RenderPage.Handle(ctx, queries.RenderPageQuery{
					Slug:          input.Slug,
					Locale:        input.Locale,
					IncludeDrafts: input.Drafts,
				})
			})
	}
	return nil
}

func registerCapabilityTool(srv *mcp.Server, resolver CapabilityResolver, def sdk.Definition) {
	key := def.Key()
	srv.Tool(string(key)).
		Description(toolDescription(def)).
		Handler(func(ctx context.Context, input capabilityInput) (map[string]any, error) {
			return resolve(ctx, resolver, key, input.Parameters, input.Locale)
		})
}

func resolve(ctx context.Context, resolver CapabilityResolver, key sdk.Key, params map[string]any, locale string) (map[string]any, error) {
	if locale != "" {
		ctx = observability.WithLocale(ctx, locale)
	}
	result, err := resolver.Resolve(ctx, key, sdk.Parameters(params))
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", key, err)
	}
	return map[string]any{"key": key, "data": result}, nil
}

// toolDescription lists the parameters since they travel inside "parameters".
func toolDescription(def sdk.Definition) string {
	var b strings.Builder
	b.WriteString(def.Description())
	if rt := def.ReturnType(); rt != "" {
		fmt.Fprintf(&b, " Returns %s.", rt)
	}
	params := def.Parameters()
	if len(params) == 0 {
		return b.String()
	}
	b.WriteString(" Parameters:")
	for i, p := range params {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, " %s (%s", p.Name, p.Type)
		if p.Required {
			b.WriteString(", required")
		}
		b.WriteString(")")
	}
	b.WriteString(".")
	return b.String()
}
