package sdk

import (
	"github.com/invopop/jsonschema"
)

var jsonSchemaTypes = map[string]bool{
	"string":  true,
	"integer": true,
	"number":  true,
	"boolean": true,
	"array":   true,
	"object":  true,
}

// ParametersSchema renders the parameter list of def as a JSON Schema object.
// Parameter types that are not JSON Schema primitives are left untyped.
func ParametersSchema(def Definition) *jsonschema.Schema {
	schema := &jsonschema.Schema{
		Version:     jsonschema.Version,
		Title:       string(def.Key()),
		Description: def.Description(),
		Type:        "object",
		Properties:  jsonschema.NewProperties(),
	}
	for _, p := range def.Parameters() {
		prop := &jsonschema.Schema{
			Description: p.Description,
			Default:     p.Default,
		}
		if jsonSchemaTypes[p.Type] {
			prop.Type = p.Type
		}
		schema.Properties.Set(p.Name, prop)
		if p.Required {
			schema.Required = append(schema.Required, p.Name)
		}
	}
	return schema
}
