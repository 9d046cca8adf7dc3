package registry

import (
	"fmt"
	"log/slog"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/felixgeelhaar/folio/internal/capability/sdk"
)

// Catalog is the application-facing view of the registry.
type Catalog struct {
	registry *Registry
	logger   *slog.Logger
}

// NewCatalog creates a catalog over reg.
func NewCatalog(reg *Registry, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{registry: reg, logger: logger}
}

// Register binds provider to def and stores it. A def that is already a
// *sdk.RegisteredCapability is stored as is and provider is ignored.
func (c *Catalog) Register(def sdk.Definition, provider sdk.Provider) error {
	if registered, ok := def.(*sdk.RegisteredCapability); ok {
		return c.registry.Register(registered)
	}
	if def == nil {
		return sdk.NewCapabilityError("", "register", sdk.ErrNilDefinition)
	}
	if provider == nil {
		return sdk.NewCapabilityError(def.Key(), "register", sdk.ErrNilProvider)
	}
	return c.registry.Register(sdk.FromDefinition(def, provider))
}

// RegisterProvider registers provider under its own definition.
func (c *Catalog) RegisterProvider(provider sdk.Provider) error {
	if provider == nil {
		return sdk.NewCapabilityError("", "register", sdk.ErrNilProvider)
	}
	return c.Register(provider.Definition(), provider)
}

// Has reports whether key is registered.
func (c *Catalog) Has(key sdk.Key) bool {
	return c.registry.Has(key)
}

// Definition returns the definition registered under key.
func (c *Catalog) Definition(key sdk.Key) (sdk.Definition, bool) {
	registered, ok := c.registry.Get(key)
	if !ok {
		return nil, false
	}
	return registered, true
}

// Provider returns the provider registered under key.
func (c *Catalog) Provider(key sdk.Key) (sdk.Provider, bool) {
	registered, ok := c.registry.Get(key)
	if !ok {
		return nil, false
	}
	return registered.Provider(), true
}

// Definitions returns every definition in registration order.
func (c *Catalog) Definitions() []sdk.Definition {
	all := c.registry.All()
	out := make([]sdk.Definition, len(all))
	for i, registered := range all {
		out[i] = definitionOnly(registered)
	}
	return out
}

// PublicDefinitions returns the definitions marked public.
func (c *Catalog) PublicDefinitions() []sdk.Definition {
	var out []sdk.Definition
	for _, registered := range c.registry.All() {
		if registered.IsPublic() {
			out = append(out, definitionOnly(registered))
		}
	}
	return out
}

// Match returns the definitions whose keys match a glob pattern such as
// "projects.*" or "*.visible.v1".
func (c *Catalog) Match(pattern string) ([]sdk.Definition, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("match %q: %w", pattern, doublestar.ErrBadPattern)
	}
	var out []sdk.Definition
	for _, registered := range c.registry.All() {
		ok, err := doublestar.Match(pattern, string(registered.Key()))
		if err != nil {
			return nil, fmt.Errorf("match %q: %w", pattern, err)
		}
		if ok {
			out = append(out, definitionOnly(registered))
		}
	}
	return out, nil
}

// Latest returns the definition of the highest registered version of base.
func (c *Catalog) Latest(base string) (sdk.Definition, bool) {
	registered, ok := c.registry.Latest(base)
	if !ok {
		return nil, false
	}
	return definitionOnly(registered), true
}

// Len returns the number of registered capabilities.
func (c *Catalog) Len() int {
	return c.registry.Len()
}

// definitionOnly hides the provider from introspection callers.
func definitionOnly(registered *sdk.RegisteredCapability) sdk.Definition {
	opts := []sdk.DefinitionOption{sdk.WithReturnType(registered.ReturnType())}
	for _, p := range registered.Parameters() {
		opts = append(opts, sdk.WithParameter(p))
	}
	if registered.IsPublic() {
		opts = append(opts, sdk.Public())
	}
	return sdk.NewDefinition(registered.Key(), registered.Description(), opts...)
}

// Module is implemented by each domain package that offers capabilities.
// RegisterCapabilities is called once at boot.
type Module interface {
	Name() string
	RegisterCapabilities(catalog *Catalog) error
}

// RegisterModules runs each module's boot hook in order and stops at the first error.
func RegisterModules(catalog *Catalog, modules ...Module) error {
	for _, m := range modules {
		before := catalog.Len()
		if err := m.RegisterCapabilities(catalog); err != nil {
			return fmt.Errorf("module %s: %w", m.Name(), err)
		}
		catalog.logger.Info("registered module capabilities",
			"module", m.Name(),
			"count", catalog.Len()-before,
		)
	}
	return nil
}
