package field

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/felixgeelhaar/folio/internal/content/template"
	"github.com/stretchr/testify/assert"
)

func TestNormalize_StringLike(t *testing.T) {
	tests := []struct {
		name   string
		raw    any
		want   any
		wantOK bool
	}{
		{"nil", nil, nil, false},
		{"empty", "", nil, false},
		{"blank", "   ", nil, false},
		{"trimmed", "  hello  ", "hello", true},
		{"integer", 42, "42", true},
		{"float", 2.5, "2.5", true},
		{"whole float", float64(3), "3", true},
		{"large float", 1e21, "1e+21", true},
		{"large fractional float", 1.5e22, "1.5e+22", true},
		{"below large threshold", 1e20, "100000000000000000000", true},
		{"tiny float", 1e-7, "1e-7", true},
		{"float32", float32(0.5), "0.5", true},
		{"bool", true, "true", true},
		{"array joined", []any{"a", 1, "b"}, "a,1,b", true},
		{"empty array is blank", []any{}, nil, false},
		{"object as json", map[string]any{"a": 1}, `{"a":1}`, true},
	}

	for _, ft := range []template.FieldType{template.FieldString, template.FieldText, template.FieldRichText} {
		for _, tt := range tests {
			t.Run(string(ft)+"/"+tt.name, func(t *testing.T) {
				got, ok := Normalize(ft, tt.raw)
				assert.Equal(t, tt.wantOK, ok)
				assert.Equal(t, tt.want, got)
			})
		}
	}
}

func TestNormalize_Boolean(t *testing.T) {
	tests := []struct {
		raw    any
		want   any
		wantOK bool
	}{
		{true, true, true},
		{false, false, true},
		{"true", true, true},
		{" FALSE ", false, true},
		{"True", true, true},
		{"yes", nil, false},
		{"1", nil, false},
		{1, nil, false},
		{nil, nil, false},
	}

	for _, tt := range tests {
		got, ok := Normalize(template.FieldBoolean, tt.raw)
		assert.Equal(t, tt.wantOK, ok, "%#v", tt.raw)
		assert.Equal(t, tt.want, got, "%#v", tt.raw)
	}
}

func TestNormalize_Integer(t *testing.T) {
	tests := []struct {
		name   string
		raw    any
		want   any
		wantOK bool
	}{
		{"nil", nil, nil, false},
		{"int", 3, 3, true},
		{"negative", -4, -4, true},
		{"int64", int64(7), 7, true},
		{"whole float", float64(12), 12, true},
		{"fraction truncates", 3.9, 3, true},
		{"negative fraction truncates", -3.9, -3, true},
		{"nan", math.NaN(), nil, false},
		{"inf", math.Inf(1), nil, false},
		{"string", " 12 ", 12, true},
		{"negative string", "-5", -5, true},
		{"partial string", "12abc", nil, false},
		{"decimal string", "1.5", nil, false},
		{"word", "abc", nil, false},
		{"json number", json.Number("8"), 8, true},
		{"json fraction", json.Number("8.6"), 8, true},
		{"bool", true, nil, false},
		{"array", []any{1}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(template.FieldInteger, tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)

			img, ok := Normalize(template.FieldImage, tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, img)
		})
	}
}

func TestNormalize_ArrayInteger(t *testing.T) {
	got, ok := Normalize(template.FieldArrayInteger, []any{1, "2", "3"})
	assert.True(t, ok)
	assert.Equal(t, []int{1, 2, 3}, got)

	got, ok = Normalize(template.FieldArrayInteger, []any{1, "2", "x"})
	assert.False(t, ok, "one bad item rejects the array")
	assert.Nil(t, got)

	got, ok = Normalize(template.FieldArrayInteger, []any{})
	assert.True(t, ok, "empty array is usable")
	assert.Equal(t, []int{}, got)

	got, ok = Normalize(template.FieldArrayInteger, []any{float64(4), json.Number("5")})
	assert.True(t, ok)
	assert.Equal(t, []int{4, 5}, got)

	_, ok = Normalize(template.FieldArrayInteger, "1,2,3")
	assert.False(t, ok)

	_, ok = Normalize(template.FieldArrayInteger, nil)
	assert.False(t, ok)
}

func TestNormalize_Collection(t *testing.T) {
	items := []any{
		map[string]any{"title": "One"},
		map[string]any{"title": "Two", "extra": true},
	}
	got, ok := Normalize(template.FieldCollection, items)
	assert.True(t, ok)
	assert.Equal(t, items, got)

	got, ok = Normalize(template.FieldCollection, []any{})
	assert.True(t, ok, "empty collection is usable")
	assert.Equal(t, []any{}, got)

	typed := []map[string]any{{"title": "One"}}
	got, ok = Normalize(template.FieldCollection, typed)
	assert.True(t, ok)
	assert.Equal(t, []any{map[string]any{"title": "One"}}, got)

	_, ok = Normalize(template.FieldCollection, map[string]any{"title": "One"})
	assert.False(t, ok)

	_, ok = Normalize(template.FieldCollection, "items")
	assert.False(t, ok)
}

func TestNormalize_CollectionDoesNotAlias(t *testing.T) {
	items := []any{"a", "b"}
	got, ok := Collection(items)
	assert.True(t, ok)

	got[0] = "changed"
	assert.Equal(t, "a", items[0])
}

func TestNormalize_ImageGallery(t *testing.T) {
	got, ok := Normalize(template.FieldImageGallery, []any{1, "2", "x", nil, 3.0})
	assert.True(t, ok)
	assert.Equal(t, []int{1, 2, 3}, got)

	got, ok = Normalize(template.FieldImageGallery, []any{})
	assert.True(t, ok)
	assert.Equal(t, []int{}, got)

	_, ok = Normalize(template.FieldImageGallery, 5)
	assert.False(t, ok)
}

func TestNormalize_UnknownTypePassesThrough(t *testing.T) {
	raw := map[string]any{"anything": []any{1, 2}}
	got, ok := Normalize("", raw)
	assert.True(t, ok)
	assert.Equal(t, raw, got)

	got, ok = Normalize("", "   ")
	assert.True(t, ok, "passthrough values are not trimmed")
	assert.Equal(t, "   ", got)

	_, ok = Normalize("", nil)
	assert.False(t, ok)
}
