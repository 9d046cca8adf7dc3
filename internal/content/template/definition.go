// Package template holds the section template schema: which fields a section
// of a given template carries, their types and defaults, and where its data
// comes from.
package template

import (
	"github.com/felixgeelhaar/folio/internal/capability/sdk"
)

// FieldType is the primitive type of a template field.
type FieldType string

const (
	FieldString       FieldType = "string"
	FieldText         FieldType = "text"
	FieldRichText     FieldType = "rich_text"
	FieldBoolean      FieldType = "boolean"
	FieldInteger      FieldType = "integer"
	FieldArrayInteger FieldType = "array_integer"
	FieldCollection   FieldType = "collection"
	FieldImage        FieldType = "image"
	FieldImageGallery FieldType = "image_gallery"
)

// FieldTypes returns every supported field type.
func FieldTypes() []FieldType {
	return []FieldType{
		FieldString,
		FieldText,
		FieldRichText,
		FieldBoolean,
		FieldInteger,
		FieldArrayInteger,
		FieldCollection,
		FieldImage,
		FieldImageGallery,
	}
}

// IsValid reports whether t is a supported field type.
func (t FieldType) IsValid() bool {
	for _, known := range FieldTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// IsStringLike reports whether values of t are strings with blank-as-absent semantics.
func (t FieldType) IsStringLike() bool {
	return t == FieldString || t == FieldText || t == FieldRichText
}

// FieldDefinition describes one field of a template.
type FieldDefinition struct {
	Name       string            `json:"name"`
	Label      string            `json:"label,omitempty"`
	LabelKey   string            `json:"label_key,omitempty"`
	Type       FieldType         `json:"type"`
	Required   bool              `json:"required"`
	Default    any               `json:"default,omitempty"`
	DefaultKey string            `json:"default_key,omitempty"`
	Validation []string          `json:"validation,omitempty"`
	ItemFields []FieldDefinition `json:"item_fields,omitempty"`
}

// HasDefault reports whether the field declares a non-null default.
func (f FieldDefinition) HasDefault() bool {
	return f.Default != nil
}

// ItemField returns the nested field named name of a collection field.
func (f FieldDefinition) ItemField(name string) (FieldDefinition, bool) {
	for _, item := range f.ItemFields {
		if item.Name == name {
			return item, true
		}
	}
	return FieldDefinition{}, false
}

// DataSourceCapability is the only supported data source type.
const DataSourceCapability = "capability"

// DataSource binds a template to a capability whose result is injected into
// the section data at render time.
type DataSource struct {
	Type          string  `json:"type"`
	CapabilityKey sdk.Key `json:"capability_key"`
	// ParameterMapping maps section field names to capability parameter names.
	ParameterMapping map[string]string `json:"parameter_mapping,omitempty"`
	TargetField      string            `json:"target_field"`
}

// Definition is an immutable section template.
type Definition struct {
	Key            string            `json:"key"`
	Label          string            `json:"label,omitempty"`
	LabelKey       string            `json:"label_key,omitempty"`
	Description    string            `json:"description,omitempty"`
	DescriptionKey string            `json:"description_key,omitempty"`
	AllowedSlots   []string          `json:"allowed_slots"`
	Fields         []FieldDefinition `json:"fields"`
	DataSource     *DataSource       `json:"data_source,omitempty"`
}

// Field returns the declared field named name.
func (d *Definition) Field(name string) (FieldDefinition, bool) {
	if d == nil {
		return FieldDefinition{}, false
	}
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// FieldType returns the declared type of name, or "" if the field is not declared.
func (d *Definition) FieldType(name string) FieldType {
	if f, ok := d.Field(name); ok {
		return f.Type
	}
	return ""
}

// AllowsSlot reports whether a section of this template may be placed in slot.
// A template without allowed slots accepts any slot, including none.
func (d *Definition) AllowsSlot(slot string) bool {
	if len(d.AllowedSlots) == 0 {
		return true
	}
	for _, s := range d.AllowedSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// RequiredFields returns the names of the fields marked required.
func (d *Definition) RequiredFields() []string {
	var names []string
	for _, f := range d.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

// HasCapabilitySource reports whether the template binds a capability.
func (d *Definition) HasCapabilitySource() bool {
	return d != nil && d.DataSource != nil && d.DataSource.Type == DataSourceCapability
}
