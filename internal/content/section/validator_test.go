package section

import (
	"errors"
	"strings"
	"testing"

	"github.com/felixgeelhaar/folio/internal/content/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_DefaultTemplates(t *testing.T) {
	v := NewValidator()
	reg := defaultTemplates(t)

	tests := []struct {
		name     string
		template string
		data     Data
		want     map[string][]string
	}{
		{
			name:     "valid hero",
			template: "hero_primary",
			data:     Data{"title": "Hello", "cta_url": "https://example.com", "image": 4},
		},
		{
			name:     "hero title required",
			template: "hero_primary",
			data:     Data{"title": "  "},
			want:     map[string][]string{"title": {"is required"}},
		},
		{
			name:     "hero title too long",
			template: "hero_primary",
			data:     Data{"title": strings.Repeat("x", 161)},
			want:     map[string][]string{"title": {"must not be greater than 160 characters"}},
		},
		{
			name:     "hero bad url and image",
			template: "hero_primary",
			data:     Data{"title": "Hi", "cta_url": "not a url", "image": 0},
			want: map[string][]string{
				"cta_url": {"must be a valid URL"},
				"image":   {"must be at least 1"},
			},
		},
		{
			name:     "nullable fields may be null",
			template: "project_highlight_list",
			data:     Data{"max_items": nil, "heading": nil},
		},
		{
			name:     "max items out of range",
			template: "project_highlight_list",
			data:     Data{"max_items": 30, "show_summary": "yes"},
			want: map[string][]string{
				"max_items":    {"must not be greater than 24"},
				"show_summary": {"must be true or false"},
			},
		},
		{
			name:     "numeric strings count as integers",
			template: "project_highlight_list",
			data:     Data{"max_items": "12", "show_summary": "1"},
		},
		{
			name:     "non-integer",
			template: "project_highlight_list",
			data:     Data{"max_items": 2.5},
			want:     map[string][]string{"max_items": {"must be an integer"}},
		},
		{
			name:     "column choice",
			template: "feature_grid",
			data:     Data{"columns": 5, "items": []any{map[string]any{"title": "A"}}},
			want:     map[string][]string{"columns": {"must be one of 2, 3, 4"}},
		},
		{
			name:     "collection items are validated",
			template: "feature_grid",
			data: Data{"columns": float64(3), "items": []any{
				map[string]any{"title": "A"},
				map[string]any{"body": "no title"},
				"not an object",
			}},
			want: map[string][]string{
				"items.1.title": {"is required"},
				"items.2":       {"must be an object"},
			},
		},
		{
			name:     "empty required collection",
			template: "feature_grid",
			data:     Data{"items": []any{}},
			want:     map[string][]string{"items": {"is required"}},
		},
		{
			name:     "wrong shape for array",
			template: "image_gallery",
			data:     Data{"images": "1,2"},
			want:     map[string][]string{"images": {"must be an array"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, ok := reg.Get(tt.template)
			require.True(t, ok)

			err := v.Validate(tt.data, tmpl)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSectionData)

			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			assert.Equal(t, ValidationErrors(tt.want), verrs)
		})
	}
}

func TestValidator_Rules(t *testing.T) {
	v := NewValidator()
	def := &template.Definition{
		Key: "contact",
		Fields: []template.FieldDefinition{
			{Name: "email", Type: template.FieldString, Validation: []string{"required", "email"}},
			{Name: "tags", Type: template.FieldCollection, Validation: []string{"array", "max:2"}},
			{Name: "code", Type: template.FieldString, Validation: []string{"string", "min:3"}},
			{Name: "ratio", Type: template.FieldString, Validation: []string{"numeric"}},
			{Name: "future", Type: template.FieldString, Validation: []string{"regex:^a$"}},
		},
	}

	err := v.Validate(Data{
		"email":  "someone@example.com",
		"tags":   []any{"a", "b"},
		"code":   "abc",
		"ratio":  "0.5",
		"future": "ignored rule",
	}, def)
	assert.NoError(t, err)

	err = v.Validate(Data{
		"email": "nope",
		"tags":  []any{"a", "b", "c"},
		"code":  12,
		"ratio": "half",
	}, def)
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, []string{"code", "email", "ratio", "tags"}, verrs.Fields())
	assert.Equal(t, []string{"must be a valid email address"}, verrs["email"])
	assert.Equal(t, []string{"must not be greater than 2 items"}, verrs["tags"])
	assert.Equal(t, []string{"must be a string"}, verrs["code"])
	assert.Equal(t, []string{"must be a number"}, verrs["ratio"])
	assert.Contains(t, err.Error(), "email: must be a valid email address")
}

func TestValidator_RequiredFlag(t *testing.T) {
	v := NewValidator()
	def := &template.Definition{
		Key:    "flagged",
		Fields: []template.FieldDefinition{{Name: "body", Type: template.FieldRichText, Required: true}},
	}

	err := v.Validate(Data{}, def)
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, []string{"is required"}, verrs["body"])

	assert.NoError(t, v.Validate(Data{"body": "<p>Hi</p>"}, def))
	assert.NoError(t, v.Validate(Data{"anything": 1}, nil))
}
