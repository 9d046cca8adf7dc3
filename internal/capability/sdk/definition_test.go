package sdk

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDefinition() *CapabilityDefinition {
	return NewDefinition(MustKey("courses.visible.v1"), "Visible courses",
		WithParameter(ParameterSpec{Name: "limit", Type: "integer", Default: nil, Description: "Maximum number of courses"}),
		WithParameter(ParameterSpec{Name: "locale", Type: "string"}),
		WithReturnType("array<Course>"),
		Public(),
	)
}

func TestNewDefinition(t *testing.T) {
	def := newTestDefinition()

	assert.Equal(t, Key("courses.visible.v1"), def.Key())
	assert.Equal(t, "Visible courses", def.Description())
	assert.Equal(t, "array<Course>", def.ReturnType())
	assert.True(t, def.IsPublic())

	params := def.Parameters()
	require.Len(t, params, 2)
	assert.Equal(t, "limit", params[0].Name)
	assert.Equal(t, "locale", params[1].Name)
}

func TestDefinition_ParametersAreCopied(t *testing.T) {
	def := newTestDefinition()

	params := def.Parameters()
	params[0].Name = "mutated"

	assert.Equal(t, "limit", def.Parameters()[0].Name)
}

func TestDefinition_PrivateByDefault(t *testing.T) {
	def := NewDefinition(MustKey("internal.stats.v1"), "")
	assert.False(t, def.IsPublic())
	assert.Empty(t, def.Parameters())
}

func TestFromDefinition(t *testing.T) {
	def := newTestDefinition()
	provider := NewFuncProvider(def, func(context.Context, Parameters, *ExecutionContext) (any, error) {
		return []any{}, nil
	})

	registered := FromDefinition(def, provider)

	assert.Equal(t, def.Key(), registered.Key())
	assert.Equal(t, def.Description(), registered.Description())
	assert.Equal(t, def.Parameters(), registered.Parameters())
	assert.Equal(t, def.ReturnType(), registered.ReturnType())
	assert.Equal(t, def.IsPublic(), registered.IsPublic())
	assert.Same(t, provider, registered.Provider())

	var asDefinition Definition = registered
	assert.Equal(t, def.Key(), asDefinition.Key())
}

func TestCapabilityError(t *testing.T) {
	err := NewCapabilityError("projects.visible.v1", "execute", ErrCircuitOpen)

	assert.Equal(t, "capability projects.visible.v1: execute: capability circuit breaker is open", err.Error())
	assert.ErrorIs(t, err, ErrCircuitOpen)

	var capErr *CapabilityError
	require.True(t, errors.As(error(err), &capErr))
	assert.Equal(t, Key("projects.visible.v1"), capErr.Key)

	anonymous := NewCapabilityError("", "register", ErrNilProvider)
	assert.Equal(t, "register: capability provider is nil", anonymous.Error())
}

func TestParametersSchema(t *testing.T) {
	def := NewDefinition(MustKey("projects.visible.v1"), "Visible projects",
		WithParameter(ParameterSpec{Name: "limit", Type: "integer", Description: "Maximum number of projects"}),
		WithParameter(ParameterSpec{Name: "locale", Type: "string", Required: true}),
		WithParameter(ParameterSpec{Name: "filter", Type: "map<string,string>", Description: "Field filters"}),
	)

	schema := ParametersSchema(def)
	raw, err := json.Marshal(schema)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Equal(t, "object", doc["type"])
	assert.Equal(t, "projects.visible.v1", doc["title"])
	assert.Equal(t, []any{"locale"}, doc["required"])

	props := doc["properties"].(map[string]any)
	assert.Equal(t, "integer", props["limit"].(map[string]any)["type"])
	assert.Equal(t, "string", props["locale"].(map[string]any)["type"])
	assert.NotContains(t, props["filter"].(map[string]any), "type")
}

func TestDescribe(t *testing.T) {
	d := Describe(newTestDefinition())
	assert.Equal(t, Key("courses.visible.v1"), d.Key)
	assert.True(t, d.Public)
	assert.Len(t, d.Parameters, 2)

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"return_type":"array<Course>"`)

	bare := Describe(NewDefinition(MustKey("bare.v1"), "Bare"))
	assert.NotNil(t, bare.Parameters)
	assert.False(t, bare.Public)
}
