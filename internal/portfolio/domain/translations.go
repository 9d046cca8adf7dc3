// Package domain holds the portfolio records exposed through capabilities.
package domain

import (
	"errors"
	"strings"
)

var (
	ErrEmptySlug        = errors.New("slug is required")
	ErrEmptyName        = errors.New("name is required")
	ErrNegativePosition = errors.New("position must not be negative")
	ErrUnknownCategory  = errors.New("technology category not found")
)

// Translations maps a locale to translated field values.
type Translations map[string]map[string]string

// Set stores value for field in locale. A blank value removes it.
func (t Translations) Set(locale, field, value string) {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if locale == "" {
		return
	}
	value = strings.TrimSpace(value)
	if value == "" {
		delete(t[locale], field)
		if len(t[locale]) == 0 {
			delete(t, locale)
		}
		return
	}
	if t[locale] == nil {
		t[locale] = map[string]string{}
	}
	t[locale][field] = value
}

// Get returns field in locale, trying the base language ("nl" for "nl-BE")
// and then fallback. Missing everywhere yields "".
func (t Translations) Get(field, locale, fallback string) string {
	for _, candidate := range candidates(locale, fallback) {
		if v := t[candidate][field]; v != "" {
			return v
		}
	}
	return ""
}

// Clone returns a deep copy.
func (t Translations) Clone() Translations {
	out := make(Translations, len(t))
	for locale, fields := range t {
		copied := make(map[string]string, len(fields))
		for k, v := range fields {
			copied[k] = v
		}
		out[locale] = copied
	}
	return out
}

func candidates(locale, fallback string) []string {
	var out []string
	add := func(l string) {
		l = strings.ToLower(strings.TrimSpace(l))
		if l == "" {
			return
		}
		for _, seen := range out {
			if seen == l {
				return
			}
		}
		out = append(out, l)
	}
	add(locale)
	if base, _, ok := strings.Cut(strings.ReplaceAll(locale, "_", "-"), "-"); ok {
		add(base)
	}
	add(fallback)
	return out
}

// listing is the visibility, ordering and translated text every record carries.
type listing struct {
	visible      bool
	position     int
	translations Translations
}

func newListing() listing {
	return listing{visible: true, translations: Translations{}}
}

func (l *listing) IsVisible() bool { return l.visible }
func (l *listing) Position() int   { return l.position }

func (l *listing) Show() { l.visible = true }
func (l *listing) Hide() { l.visible = false }

// SetPosition sets the sort position within the record kind.
func (l *listing) SetPosition(position int) error {
	if position < 0 {
		return ErrNegativePosition
	}
	l.position = position
	return nil
}

// Translate sets one translated field.
func (l *listing) Translate(locale, field, value string) {
	l.translations.Set(locale, field, value)
}

// Translations returns a copy of every translation.
func (l *listing) Translations() Translations {
	return l.translations.Clone()
}

// Text returns a translated field for locale with fallback.
func (l *listing) Text(field, locale, fallback string) string {
	return l.translations.Get(field, locale, fallback)
}

func rehydrateListing(visible bool, position int, translations Translations) listing {
	if translations == nil {
		translations = Translations{}
	}
	return listing{visible: visible, position: position, translations: translations}
}
