// Package capabilities exposes portfolio records as capability providers.
package capabilities

import (
	"github.com/felixgeelhaar/folio/internal/capability/sdk"
)

// Capability keys offered by the portfolio module.
var (
	KeyProjectsVisible        = sdk.MustKey("projects.visible.v1")
	KeyCoursesVisible         = sdk.MustKey("courses.visible.v1")
	KeyContactChannelsVisible = sdk.MustKey("contact-channels.visible.v1")
	KeyTechnologiesByCategory = sdk.MustKey("technologies.by-category.v1")
)

var (
	limitParam = sdk.ParameterSpec{
		Name:        sdk.ParamLimit,
		Type:        "integer",
		Description: "Maximum number of items; absent or non-positive means all.",
	}
	localeParam = sdk.ParameterSpec{
		Name:        sdk.ParamLocale,
		Type:        "string",
		Description: "Locale for translated fields; defaults to the request locale.",
	}
)

// locales returns the requested locale and the one to fall back to.
func locales(params sdk.Parameters, ec *sdk.ExecutionContext) (string, string) {
	fallback := sdk.DefaultLocale
	if ec != nil && ec.FallbackLocale != "" {
		fallback = ec.FallbackLocale
	}
	return params.Locale(ec), fallback
}

// flag reads a boolean parameter; anything that is not true or "true" is false.
func flag(params sdk.Parameters, name string) bool {
	switch v := params[name].(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "1"
	}
	return false
}
