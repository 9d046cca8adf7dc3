package section

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"github.com/felixgeelhaar/folio/internal/capability/sdk"
	"github.com/felixgeelhaar/folio/internal/content/template"
)

// CapabilityResolver fetches capability data. registry.Resolver satisfies it.
type CapabilityResolver interface {
	Resolve(ctx context.Context, key sdk.Key, params sdk.Parameters) (any, error)
}

// Binder fills the data source target of capability-backed templates.
type Binder struct {
	resolver CapabilityResolver
	logger   *slog.Logger
}

// NewBinder creates a binder that resolves through resolver.
func NewBinder(resolver CapabilityResolver, logger *slog.Logger) *Binder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Binder{resolver: resolver, logger: logger}
}

// Parameters maps the section's resolved field values to capability
// parameter names. Fields that resolve to nothing are left out. Fields are
// visited in name order.
func Parameters(data Data, tmpl *template.Definition) sdk.Parameters {
	params := sdk.Parameters{}
	if !tmpl.HasCapabilitySource() {
		return params
	}
	mapping := tmpl.DataSource.ParameterMapping
	for _, fieldName := range slices.Sorted(maps.Keys(mapping)) {
		paramName := mapping[fieldName]
		if v, ok := ResolveField(data, tmpl, fieldName); ok {
			params[paramName] = v
		}
	}
	return params
}

// Bind returns a copy of data with the template's capability result stored
// under its target field. Templates without a capability data source get an
// unchanged copy. The target is owned by the data source: a nil result,
// including an unregistered capability, leaves it unset even if data held a
// value there. data itself is never modified.
func (b *Binder) Bind(ctx context.Context, data Data, tmpl *template.Definition) (Data, error) {
	out := data.Clone()
	if !tmpl.HasCapabilitySource() {
		return out, nil
	}

	ds := tmpl.DataSource
	params := Parameters(data, tmpl)

	result, err := b.resolver.Resolve(ctx, ds.CapabilityKey, params)
	if err != nil {
		return nil, err
	}
	if result == nil {
		delete(out, ds.TargetField)
		b.logger.DebugContext(ctx, "data source returned nothing",
			"template_key", tmpl.Key,
			"capability", ds.CapabilityKey.String(),
		)
		return out, nil
	}

	out[ds.TargetField] = result
	return out, nil
}
