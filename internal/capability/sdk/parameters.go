package sdk

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Standard parameter names shared by the built-in providers.
const (
	ParamLimit  = "limit"
	ParamLocale = "locale"
)

// Parameters is the string-keyed map passed to a provider.
// Values are plain JSON-compatible types.
type Parameters map[string]any

// Limit reads a positive integer limit.
// Absent, nil, non-numeric, zero and negative values all mean "no limit".
// Floats and numeric strings are truncated toward zero.
func (p Parameters) Limit(name string) (int, bool) {
	n, ok := positiveInt(p[name])
	if !ok {
		return 0, false
	}
	return n, true
}

// String returns the trimmed string value of name, or "" when absent or not a string.
func (p Parameters) String(name string) string {
	s, _ := p[name].(string)
	return strings.TrimSpace(s)
}

// Locale returns the locale parameter, falling back to the ambient locale of
// ec and then to DefaultLocale.
func (p Parameters) Locale(ec *ExecutionContext) string {
	if locale := p.String(ParamLocale); locale != "" {
		return locale
	}
	if ec != nil && ec.Locale != "" {
		return ec.Locale
	}
	return DefaultLocale
}

// Clone returns a shallow copy.
func (p Parameters) Clone() Parameters {
	out := make(Parameters, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// ApplyLimit truncates items to the limit parameter when one applies.
func ApplyLimit[T any](items []T, params Parameters) []T {
	if n, ok := params.Limit(ParamLimit); ok && n < len(items) {
		return items[:n]
	}
	return items
}

func positiveInt(v any) (int, bool) {
	var f float64
	switch n := v.(type) {
	case int:
		return n, n > 0
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case float32:
		f = float64(n)
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	f = math.Trunc(f)
	if f < 1 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
