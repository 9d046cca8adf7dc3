package sdk

// ParameterSpec describes one named parameter a capability accepts.
type ParameterSpec struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Default     any    `json:"default,omitempty"`
	Description string `json:"description,omitempty"`
}

// Definition is the immutable metadata of a capability.
type Definition interface {
	Key() Key
	Description() string
	// Parameters returns the parameter schema in declaration order.
	Parameters() []ParameterSpec
	// ReturnType describes the shape of the result, e.g. "array<Project>".
	ReturnType() string
	IsPublic() bool
}

// CapabilityDefinition is the standard Definition implementation.
type CapabilityDefinition struct {
	key         Key
	description string
	parameters  []ParameterSpec
	returnType  string
	public      bool
}

// DefinitionOption configures a CapabilityDefinition.
type DefinitionOption func(*CapabilityDefinition)

// WithParameter appends a parameter to the schema.
func WithParameter(spec ParameterSpec) DefinitionOption {
	return func(d *CapabilityDefinition) {
		d.parameters = append(d.parameters, spec)
	}
}

// WithReturnType sets the return type description.
func WithReturnType(returnType string) DefinitionOption {
	return func(d *CapabilityDefinition) {
		d.returnType = returnType
	}
}

// Public marks the capability as visible outside the process (API and MCP).
func Public() DefinitionOption {
	return func(d *CapabilityDefinition) {
		d.public = true
	}
}

// NewDefinition builds a definition. Options are applied in order.
func NewDefinition(key Key, description string, opts ...DefinitionOption) *CapabilityDefinition {
	d := &CapabilityDefinition{key: key, description: description}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *CapabilityDefinition) Key() Key            { return d.key }
func (d *CapabilityDefinition) Description() string { return d.description }
func (d *CapabilityDefinition) ReturnType() string  { return d.returnType }
func (d *CapabilityDefinition) IsPublic() bool      { return d.public }

func (d *CapabilityDefinition) Parameters() []ParameterSpec {
	return cloneParameters(d.parameters)
}

// RegisteredCapability is a definition bound to the provider that executes it.
// It is itself a Definition so it can be passed anywhere a definition is expected.
type RegisteredCapability struct {
	key         Key
	description string
	parameters  []ParameterSpec
	returnType  string
	public      bool
	provider    Provider
}

// FromDefinition copies every field of def and binds provider.
func FromDefinition(def Definition, provider Provider) *RegisteredCapability {
	return &RegisteredCapability{
		key:         def.Key(),
		description: def.Description(),
		parameters:  def.Parameters(),
		returnType:  def.ReturnType(),
		public:      def.IsPublic(),
		provider:    provider,
	}
}

func (c *RegisteredCapability) Key() Key            { return c.key }
func (c *RegisteredCapability) Description() string { return c.description }
func (c *RegisteredCapability) ReturnType() string  { return c.returnType }
func (c *RegisteredCapability) IsPublic() bool      { return c.public }

func (c *RegisteredCapability) Parameters() []ParameterSpec {
	return cloneParameters(c.parameters)
}

// Provider returns the bound provider.
func (c *RegisteredCapability) Provider() Provider {
	return c.provider
}

func cloneParameters(in []ParameterSpec) []ParameterSpec {
	if in == nil {
		return nil
	}
	out := make([]ParameterSpec, len(in))
	copy(out, in)
	return out
}

// Descriptor is the serializable view of a Definition.
type Descriptor struct {
	Key         Key             `json:"key"`
	Description string          `json:"description"`
	Parameters  []ParameterSpec `json:"parameters"`
	ReturnType  string          `json:"return_type,omitempty"`
	Public      bool            `json:"public"`
}

// Describe snapshots def.
func Describe(def Definition) Descriptor {
	params := def.Parameters()
	if params == nil {
		params = []ParameterSpec{}
	}
	return Descriptor{
		Key:         def.Key(),
		Description: def.Description(),
		Parameters:  params,
		ReturnType:  def.ReturnType(),
		Public:      def.IsPublic(),
	}
}
