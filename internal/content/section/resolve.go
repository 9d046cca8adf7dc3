package section

import (
	"github.com/felixgeelhaar/folio/internal/content/field"
	"github.com/felixgeelhaar/folio/internal/content/template"
)

// ResolveField returns the effective value of field name. The section's own
// value wins when it normalizes to something usable, then the template
// default; otherwise the field is absent and ok is false.
//
// Without a template the raw value is returned as is. Fields the template
// does not declare pass through uncoerced.
func ResolveField(data Data, tmpl *template.Definition, name string) (any, bool) {
	if tmpl == nil {
		raw, ok := data[name]
		return raw, ok && raw != nil
	}

	ft := tmpl.FieldType(name)

	if raw, ok := data[name]; ok && raw != nil {
		if v, ok := field.Normalize(ft, raw); ok {
			return v, true
		}
	}

	if def, declared := tmpl.Field(name); declared && def.HasDefault() {
		if v, ok := field.Normalize(ft, def.Default); ok {
			return v, true
		}
	}

	return nil, false
}

// ResolveFields resolves every field declared by tmpl. Absent fields are
// left out. A value already bound under the template's data source target
// is carried over unchanged.
//
// Without a template every non-nil value of data is returned raw.
func ResolveFields(data Data, tmpl *template.Definition) map[string]any {
	out := make(map[string]any)
	if tmpl == nil {
		for name, raw := range data {
			if raw != nil {
				out[name] = raw
			}
		}
		return out
	}

	for _, f := range tmpl.Fields {
		if v, ok := ResolveField(data, tmpl, f.Name); ok {
			out[f.Name] = v
		}
	}

	if tmpl.HasCapabilitySource() {
		target := tmpl.DataSource.TargetField
		if v, ok := data[target]; ok {
			out[target] = v
		}
	}
	return out
}

// RequiredSatisfied reports whether a template with required fields has at
// least one of them resolving to a value. Templates without required fields
// are always satisfied.
func RequiredSatisfied(data Data, tmpl *template.Definition) bool {
	required := tmpl.RequiredFields()
	if len(required) == 0 {
		return true
	}
	for _, name := range required {
		if _, ok := ResolveField(data, tmpl, name); ok {
			return true
		}
	}
	return false
}
