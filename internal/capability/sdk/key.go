// Package sdk defines the contract between capability providers and the
// rest of folio: keys, definitions, the provider interface and the
// helpers providers use to read their parameters.
package sdk

import (
	"regexp"
	"strings"
)

// Key identifies a capability by a stable string of the form
// <domain>.<action>.v<N>, for example "contact-channels.visible.v1".
// Two keys are equal iff their strings are equal.
type Key string

var versionSegment = regexp.MustCompile(`^v[0-9]+$`)

// NewKey validates and returns a capability key.
// Only blank input is rejected; keys without a version segment are allowed.
func NewKey(s string) (Key, error) {
	if strings.TrimSpace(s) == "" {
		return "", ErrInvalidKey
	}
	return Key(s), nil
}

// MustKey is NewKey for compile-time constants. It panics on blank input.
func MustKey(s string) Key {
	k, err := NewKey(s)
	if err != nil {
		panic(err)
	}
	return k
}

// String returns the key as a string.
func (k Key) String() string {
	return string(k)
}

// IsZero reports whether the key is empty.
func (k Key) IsZero() bool {
	return k == ""
}

// Version returns the trailing version segment ("v1"), or "" if the key has none.
func (k Key) Version() string {
	parts := strings.Split(string(k), ".")
	if len(parts) < 2 {
		return ""
	}
	if last := parts[len(parts)-1]; versionSegment.MatchString(last) {
		return last
	}
	return ""
}

// Base returns the key without its version segment ("projects.visible").
func (k Key) Base() string {
	if v := k.Version(); v != "" {
		return strings.TrimSuffix(string(k), "."+v)
	}
	return string(k)
}

// Domain returns the leading segment ("projects").
func (k Key) Domain() string {
	base := k.Base()
	if i := strings.Index(base, "."); i >= 0 {
		return base[:i]
	}
	return base
}

// Action returns everything between the domain and the version ("visible").
func (k Key) Action() string {
	base := k.Base()
	if i := strings.Index(base, "."); i >= 0 {
		return base[i+1:]
	}
	return ""
}
