// Package field coerces raw section values into the typed values declared by
// template fields. Every reader of section data goes through Normalize so the
// coercion rules live in one place.
package field

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/folio/internal/content/template"
)

// Normalize coerces raw to the Go representation of t.
// The boolean is false when raw has no usable value for t; callers treat
// that as "field absent", never as an error.
//
// Result types: string for string-like fields, bool, int for integer and
// image, []int for array_integer and image_gallery, []any for collection.
// Undeclared types pass raw through unchanged.
func Normalize(t template.FieldType, raw any) (any, bool) {
	switch t {
	case template.FieldString, template.FieldText, template.FieldRichText:
		return unwrap(String(raw))
	case template.FieldBoolean:
		return unwrap(Bool(raw))
	case template.FieldInteger, template.FieldImage:
		return unwrap(Int(raw))
	case template.FieldArrayInteger:
		return unwrap(IntArray(raw))
	case template.FieldImageGallery:
		return unwrap(ImageGallery(raw))
	case template.FieldCollection:
		return unwrap(Collection(raw))
	default:
		return raw, raw != nil
	}
}

func unwrap[T any](v T, ok bool) (any, bool) {
	if !ok {
		return nil, false
	}
	return v, true
}

// String renders raw as trimmed text. Blank text is absent.
func String(raw any) (string, bool) {
	if raw == nil {
		return "", false
	}
	s := strings.TrimSpace(stringify(raw))
	return s, s != ""
}

// formatNumber renders v the way a JavaScript number prints: plain decimals
// inside [1e-6, 1e21), exponent notation with an unpadded exponent outside.
func formatNumber(v float64, bitSize int) string {
	switch abs := math.Abs(v); {
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case abs == 0 || (abs >= 1e-6 && abs < 1e21) || math.IsNaN(v):
		return strconv.FormatFloat(v, 'f', -1, bitSize)
	}
	s := strconv.FormatFloat(v, 'e', -1, bitSize)
	s = strings.Replace(s, "e+0", "e+", 1)
	return strings.Replace(s, "e-0", "e-", 1)
}

func stringify(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	case float64:
		return formatNumber(v, 64)
	case float32:
		return formatNumber(float64(v), 32)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = stringify(item)
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(v, ",")
	case []int:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = strconv.Itoa(item)
		}
		return strings.Join(parts, ",")
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return fmt.Sprint(v)
	}
}

// Bool accepts booleans and the strings "true" and "false" in any case.
func Bool(raw any) (bool, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}

// Int coerces raw to an integer. Numbers must be finite and are truncated
// toward zero. Strings must hold a base-10 integer after trimming.
func Int(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case uint:
		return int(v), v <= math.MaxInt
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		return int(v), true
	case uint64:
		return int(v), v <= math.MaxInt
	case float32:
		return fromFloat(float64(v))
	case float64:
		return fromFloat(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), true
		}
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return fromFloat(f)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 0)
		if err != nil {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

func fromFloat(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	f = math.Trunc(f)
	if f >= math.MaxInt || f < math.MinInt {
		return 0, false
	}
	return int(f), true
}

// IntArray coerces every item of an array with the Int rule.
// One bad item rejects the whole array.
func IntArray(raw any) ([]int, bool) {
	items, ok := asSlice(raw)
	if !ok {
		return nil, false
	}
	out := make([]int, 0, len(items))
	for _, item := range items {
		n, ok := Int(item)
		if !ok {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

// Collection accepts any array and returns its items unchanged.
// An empty array is a usable value.
func Collection(raw any) ([]any, bool) {
	items, ok := asSlice(raw)
	if !ok {
		return nil, false
	}
	return items, true
}

// Image coerces an image reference id.
func Image(raw any) (int, bool) {
	return Int(raw)
}

// ImageGallery coerces an array of image reference ids, dropping items that
// are not ids.
func ImageGallery(raw any) ([]int, bool) {
	items, ok := asSlice(raw)
	if !ok {
		return nil, false
	}
	out := make([]int, 0, len(items))
	for _, item := range items {
		if n, ok := Image(item); ok {
			out = append(out, n)
		}
	}
	return out, true
}

func asSlice(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case []any:
		return append([]any{}, v...), true
	case []map[string]any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out, true
	case []string:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out, true
	case []int:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out, true
	case []float64:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out, true
	default:
		return nil, false
	}
}
