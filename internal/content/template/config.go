package template

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/folio/internal/capability/sdk"
)

// ConfigFile is the declarative template configuration as written in YAML or JSON.
type ConfigFile struct {
	Templates []TemplateConfig `json:"templates" yaml:"templates" jsonschema:"required"`
}

// TemplateConfig declares one template.
type TemplateConfig struct {
	Key            string            `json:"key" yaml:"key" jsonschema:"required"`
	Label          string            `json:"label,omitempty" yaml:"label,omitempty"`
	LabelKey       string            `json:"label_key,omitempty" yaml:"label_key,omitempty"`
	Description    string            `json:"description,omitempty" yaml:"description,omitempty"`
	DescriptionKey string            `json:"description_key,omitempty" yaml:"description_key,omitempty"`
	AllowedSlots   []string          `json:"allowed_slots,omitempty" yaml:"allowed_slots,omitempty"`
	Fields         []FieldConfig     `json:"fields,omitempty" yaml:"fields,omitempty"`
	DataSource     *DataSourceConfig `json:"data_source,omitempty" yaml:"data_source,omitempty"`
}

// FieldConfig declares one template field.
type FieldConfig struct {
	Name       string        `json:"name" yaml:"name" jsonschema:"required"`
	Label      string        `json:"label,omitempty" yaml:"label,omitempty"`
	LabelKey   string        `json:"label_key,omitempty" yaml:"label_key,omitempty"`
	Type       string        `json:"type,omitempty" yaml:"type,omitempty" jsonschema:"enum=string,enum=text,enum=rich_text,enum=boolean,enum=integer,enum=array_integer,enum=collection,enum=image,enum=image_gallery"`
	Required   bool          `json:"required,omitempty" yaml:"required,omitempty"`
	Default    any           `json:"default,omitempty" yaml:"default,omitempty"`
	DefaultKey string        `json:"default_key,omitempty" yaml:"default_key,omitempty"`
	Validation []string      `json:"validation,omitempty" yaml:"validation,omitempty"`
	ItemFields []FieldConfig `json:"item_fields,omitempty" yaml:"item_fields,omitempty"`
}

// DataSourceConfig declares where a template's bound data comes from.
type DataSourceConfig struct {
	Type             string            `json:"type" yaml:"type" jsonschema:"required,enum=capability"`
	CapabilityKey    string            `json:"capability_key" yaml:"capability_key" jsonschema:"required"`
	ParameterMapping map[string]string `json:"parameter_mapping,omitempty" yaml:"parameter_mapping,omitempty"`
	TargetField      string            `json:"target_field" yaml:"target_field" jsonschema:"required"`
}

// Registry holds the templates of one configuration. It is immutable once built.
type Registry struct {
	definitions map[string]*Definition
	order       []string
}

// FromConfig builds a registry, failing on the first malformed entry.
func FromConfig(cfg ConfigFile) (*Registry, error) {
	r := &Registry{definitions: make(map[string]*Definition, len(cfg.Templates))}

	for i, tc := range cfg.Templates {
		key := strings.TrimSpace(tc.Key)
		if key == "" {
			return nil, &ConfigError{Index: i, Err: ErrMissingKey}
		}
		if _, exists := r.definitions[key]; exists {
			return nil, &ConfigError{Index: i, Template: key, Err: ErrDuplicateTemplate}
		}

		fields, err := buildFields(tc.Fields, "")
		if err != nil {
			err.Index, err.Template = i, key
			return nil, err
		}

		def := &Definition{
			Key:            key,
			Label:          tc.Label,
			LabelKey:       tc.LabelKey,
			Description:    tc.Description,
			DescriptionKey: tc.DescriptionKey,
			AllowedSlots:   append([]string(nil), tc.AllowedSlots...),
			Fields:         fields,
		}

		if tc.DataSource != nil {
			ds, err := buildDataSource(*tc.DataSource)
			if err != nil {
				return nil, &ConfigError{Index: i, Template: key, Err: err}
			}
			def.DataSource = ds
		}

		r.definitions[key] = def
		r.order = append(r.order, key)
	}

	return r, nil
}

func buildFields(configs []FieldConfig, parent string) ([]FieldDefinition, *ConfigError) {
	if len(configs) == 0 {
		return nil, nil
	}
	fields := make([]FieldDefinition, 0, len(configs))
	seen := make(map[string]bool, len(configs))

	for _, fc := range configs {
		name := strings.TrimSpace(fc.Name)
		path := name
		if parent != "" {
			path = parent + "." + name
		}
		if name == "" {
			return nil, &ConfigError{Field: parent, Err: ErrMissingFieldName}
		}
		if seen[name] {
			return nil, &ConfigError{Field: path, Err: ErrDuplicateField}
		}
		seen[name] = true

		ft := FieldType(strings.TrimSpace(fc.Type))
		if ft == "" {
			ft = FieldString
		}
		if !ft.IsValid() {
			return nil, &ConfigError{Field: path, Err: ErrUnknownFieldType}
		}

		items, err := buildFields(fc.ItemFields, path)
		if err != nil {
			return nil, err
		}

		fields = append(fields, FieldDefinition{
			Name:       name,
			Label:      fc.Label,
			LabelKey:   fc.LabelKey,
			Type:       ft,
			Required:   fc.Required,
			Default:    fc.Default,
			DefaultKey: fc.DefaultKey,
			Validation: append([]string(nil), fc.Validation...),
			ItemFields: items,
		})
	}
	return fields, nil
}

func buildDataSource(dc DataSourceConfig) (*DataSource, error) {
	if dc.Type != DataSourceCapability {
		return nil, ErrInvalidDataSource
	}
	key, err := sdk.NewKey(dc.CapabilityKey)
	if err != nil {
		return nil, ErrInvalidDataSource
	}
	target := strings.TrimSpace(dc.TargetField)
	if target == "" {
		return nil, ErrInvalidDataSource
	}
	mapping := make(map[string]string, len(dc.ParameterMapping))
	mapped := make(map[string]string, len(dc.ParameterMapping))
	for field, param := range dc.ParameterMapping {
		if strings.TrimSpace(field) == "" || strings.TrimSpace(param) == "" {
			return nil, ErrInvalidDataSource
		}
		// one field per parameter, or the bound value depends on map order
		if other, dup := mapped[param]; dup {
			first, second := min(field, other), max(field, other)
			return nil, fmt.Errorf("%w: %s and %s both map to parameter %s", ErrInvalidDataSource, first, second, param)
		}
		mapped[param] = field
		mapping[field] = param
	}
	return &DataSource{
		Type:             dc.Type,
		CapabilityKey:    key,
		ParameterMapping: mapping,
		TargetField:      target,
	}, nil
}

// Get returns the template registered under key.
func (r *Registry) Get(key string) (*Definition, bool) {
	d, ok := r.definitions[key]
	return d, ok
}

// Has reports whether key is defined.
func (r *Registry) Has(key string) bool {
	_, ok := r.definitions[key]
	return ok
}

// All returns every template in configuration order.
func (r *Registry) All() []*Definition {
	out := make([]*Definition, len(r.order))
	for i, key := range r.order {
		out[i] = r.definitions[key]
	}
	return out
}

// Keys returns every template key in configuration order.
func (r *Registry) Keys() []string {
	return append([]string(nil), r.order...)
}

// Len returns the number of templates.
func (r *Registry) Len() int {
	return len(r.order)
}
