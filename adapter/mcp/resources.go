package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/folio/internal/capability/sdk"
)

const (
	TemplatesURI    = "folio://templates"
	CapabilitiesURI = "folio://capabilities"
)

// RegisterResources exposes the template registry and the public capability
// catalog as JSON documents.
func RegisterResources(srv *mcp.Server, deps Dependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}

	if deps.Templates != nil {
		srv.Resource(TemplatesURI).
			Name("Section templates").
			Description("Every section template with its fields, slots and data source").
			MimeType("application/json").
			Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
				return jsonResource(uri, map[string]any{"templates": deps.Templates.All()})
			})

		for _, tmpl := range deps.Templates.All() {
			srv.Resource(TemplatesURI + "/" + tmpl.Key).
				Name(tmpl.Label).
				Description(tmpl.Description).
				MimeType("application/json").
				Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
					return jsonResource(uri, tmpl)
				})
		}
	}

	if deps.Catalog != nil {
		srv.Resource(CapabilitiesURI).
			Name("Capabilities").
			Description("Public capabilities a template data source can bind to").
			MimeType("application/json").
			Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
				defs := deps.Catalog.PublicDefinitions()
				out := make([]sdk.Descriptor, 0, len(defs))
				for _, def := range defs {
					out = append(out, sdk.Describe(def))
				}
				return jsonResource(uri, map[string]any{"capabilities": out})
			})
	}
	return nil
}

func jsonResource(uri string, v any) (*mcp.ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(data),
	}, nil
}
