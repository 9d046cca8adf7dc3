// Package registry stores registered capabilities and resolves them for
// consumers. Registration happens once at boot; lookups are read-only.
package registry

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/felixgeelhaar/folio/internal/capability/sdk"
)

// Registry maps capability keys to registered capabilities.
type Registry struct {
	mu     sync.RWMutex
	items  map[sdk.Key]*sdk.RegisteredCapability
	order  []sdk.Key
	logger *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		items:  make(map[sdk.Key]*sdk.RegisteredCapability),
		logger: logger,
	}
}

// Register inserts capability under its key. A key can be registered only once.
func (r *Registry) Register(capability *sdk.RegisteredCapability) error {
	if capability == nil {
		return sdk.NewCapabilityError("", "register", sdk.ErrNilDefinition)
	}
	key := capability.Key()
	if strings.TrimSpace(string(key)) == "" {
		return sdk.NewCapabilityError("", "register", sdk.ErrInvalidKey)
	}
	if capability.Provider() == nil {
		return sdk.NewCapabilityError(key, "register", sdk.ErrNilProvider)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[key]; exists {
		return sdk.NewCapabilityError(key, "register", sdk.ErrDuplicateCapability)
	}
	r.items[key] = capability
	r.order = append(r.order, key)

	r.logger.Debug("registered capability",
		"capability", string(key),
		"public", capability.IsPublic(),
	)
	return nil
}

// Has reports whether key is registered.
func (r *Registry) Has(key sdk.Key) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.items[key]
	return ok
}

// Get returns the capability registered under key.
func (r *Registry) Get(key sdk.Key) (*sdk.RegisteredCapability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.items[key]
	return c, ok
}

// All returns a snapshot of every capability in registration order.
func (r *Registry) All() []*sdk.RegisteredCapability {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*sdk.RegisteredCapability, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.items[key])
	}
	return out
}

// Len returns the number of registered capabilities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Latest returns the highest registered version of a <domain>.<action> base.
// An unversioned key is only returned when no versioned key shares the base.
func (r *Registry) Latest(base string) (*sdk.RegisteredCapability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		versions    semver.Collection
		byVersion   = make(map[*semver.Version]*sdk.RegisteredCapability)
		unversioned *sdk.RegisteredCapability
	)
	for _, key := range r.order {
		if key.Base() != base {
			continue
		}
		c := r.items[key]
		if key.Version() == "" {
			unversioned = c
			continue
		}
		v, err := semver.NewVersion(key.Version())
		if err != nil {
			continue
		}
		versions = append(versions, v)
		byVersion[v] = c
	}

	if len(versions) == 0 {
		return unversioned, unversioned != nil
	}
	sort.Sort(versions)
	return byVersion[versions[len(versions)-1]], true
}
