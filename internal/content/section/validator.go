package section

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/felixgeelhaar/folio/internal/content/field"
	"github.com/felixgeelhaar/folio/internal/content/template"
)

var validate = validator.New()

// ValidationErrors maps a field path to its failure messages. Paths of
// collection items look like "items.0.title".
type ValidationErrors map[string][]string

func (e ValidationErrors) add(path, msg string) {
	e[path] = append(e[path], msg)
}

// Fields returns the failing field paths in sorted order.
func (e ValidationErrors) Fields() []string {
	paths := make([]string, 0, len(e))
	for p := range e {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (e ValidationErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, p := range e.Fields() {
		parts = append(parts, p+": "+strings.Join(e[p], ", "))
	}
	return ErrInvalidSectionData.Error() + ": " + strings.Join(parts, "; ")
}

func (e ValidationErrors) Unwrap() error {
	return ErrInvalidSectionData
}

// Validator checks section data against the validation rules of its template
// before it is stored. Rendering never validates: stored data is read
// tolerantly through ResolveField.
//
// Rules follow the "name:argument" form used in template configuration:
// required, nullable, string, integer, numeric, boolean, array, min:N, max:N,
// email, url and in:a,b. Unknown rules are ignored. A field that is empty
// and not required is skipped entirely.
type Validator struct{}

// NewValidator creates a validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate returns ValidationErrors when data breaks any rule of tmpl.
func (v *Validator) Validate(data Data, tmpl *template.Definition) error {
	if tmpl == nil {
		return nil
	}
	errs := ValidationErrors{}
	validateFields(errs, "", data, tmpl.Fields)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

type rule struct {
	name string
	arg  string
}

func parseRules(f template.FieldDefinition) ([]rule, bool) {
	required := f.Required
	rules := make([]rule, 0, len(f.Validation))
	for _, raw := range f.Validation {
		name, arg, _ := strings.Cut(strings.TrimSpace(raw), ":")
		name = strings.ToLower(name)
		if name == "required" {
			required = true
			continue
		}
		rules = append(rules, rule{name: name, arg: arg})
	}
	return rules, required
}

func validateFields(errs ValidationErrors, prefix string, data map[string]any, fields []template.FieldDefinition) {
	for _, f := range fields {
		path := prefix + f.Name
		raw := data[f.Name]
		rules, required := parseRules(f)

		if !filled(raw) {
			if required {
				errs.add(path, "is required")
			}
			continue
		}

		numeric := hasRule(rules, "integer") || hasRule(rules, "numeric") ||
			f.Type == template.FieldInteger
		for _, r := range rules {
			if msg := check(r, raw, numeric); msg != "" {
				errs.add(path, msg)
			}
		}

		if f.Type == template.FieldCollection && len(f.ItemFields) > 0 {
			items, ok := field.Collection(raw)
			if !ok {
				continue
			}
			for i, item := range items {
				itemPath := path + "." + strconv.Itoa(i)
				record, ok := item.(map[string]any)
				if !ok {
					errs.add(itemPath, "must be an object")
					continue
				}
				validateFields(errs, itemPath+".", record, f.ItemFields)
			}
		}
	}
}

func hasRule(rules []rule, name string) bool {
	for _, r := range rules {
		if r.name == name {
			return true
		}
	}
	return false
}

// filled reports whether raw counts as provided: not nil, not a blank string
// and not an empty array or object.
func filled(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return false
	case string:
		return validate.Var(strings.TrimSpace(v), "required") == nil
	case map[string]any:
		return len(v) > 0
	}
	if items, ok := field.Collection(raw); ok {
		return len(items) > 0
	}
	return true
}

func check(r rule, raw any, numeric bool) string {
	switch r.name {
	case "string":
		if _, ok := raw.(string); !ok {
			return "must be a string"
		}
	case "integer":
		if !isInteger(raw) {
			return "must be an integer"
		}
	case "numeric":
		if _, ok := number(raw); !ok {
			return "must be a number"
		}
	case "boolean":
		if !isBoolean(raw) {
			return "must be true or false"
		}
	case "array":
		if _, ok := field.Collection(raw); !ok {
			return "must be an array"
		}
	case "min", "max":
		return checkSize(r, raw, numeric)
	case "email":
		s, ok := raw.(string)
		if !ok || validate.Var(s, "email") != nil {
			return "must be a valid email address"
		}
	case "url":
		s, ok := raw.(string)
		if !ok || validate.Var(s, "url") != nil {
			return "must be a valid URL"
		}
	case "in":
		return checkIn(r.arg, raw)
	}
	return ""
}

func checkSize(r rule, raw any, numeric bool) string {
	limit, err := strconv.ParseFloat(strings.TrimSpace(r.arg), 64)
	if err != nil {
		return ""
	}
	tag := r.name + "=" + strconv.FormatFloat(limit, 'f', -1, 64)

	var value any
	var unit string
	if items, ok := field.Collection(raw); ok {
		value, unit = items, " items"
	} else if n, ok := number(raw); ok && (numeric || !isString(raw)) {
		value = n
	} else if s, ok := raw.(string); ok {
		value, unit = s, " characters"
	} else {
		return ""
	}

	if validate.Var(value, tag) == nil {
		return ""
	}
	if r.name == "min" {
		return fmt.Sprintf("must be at least %s%s", r.arg, unit)
	}
	return fmt.Sprintf("must not be greater than %s%s", r.arg, unit)
}

func checkIn(arg string, raw any) string {
	options := strings.Split(arg, ",")
	quoted := make([]string, 0, len(options))
	for _, o := range options {
		quoted = append(quoted, "'"+strings.TrimSpace(o)+"'")
	}
	s, ok := field.String(raw)
	if ok && validate.Var(s, "oneof="+strings.Join(quoted, " ")) == nil {
		return ""
	}
	return "must be one of " + strings.Join(options, ", ")
}

func isString(raw any) bool {
	_, ok := raw.(string)
	return ok
}

func number(raw any) (float64, bool) {
	var f float64
	switch v := raw.(type) {
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case float64:
		f = v
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
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
	return f, true
}

func isInteger(raw any) bool {
	if s, ok := raw.(string); ok {
		_, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		return err == nil
	}
	f, ok := number(raw)
	return ok && f == math.Trunc(f)
}

func isBoolean(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "false", "1", "0":
			return true
		}
	case int:
		return v == 0 || v == 1
	case float64:
		return v == 0 || v == 1
	}
	return false
}
