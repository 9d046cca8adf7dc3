package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/felixgeelhaar/folio/internal/capability/sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticProvider(key string, result any, opts ...sdk.DefinitionOption) *sdk.FuncProvider {
	def := sdk.NewDefinition(sdk.MustKey(key), "test capability "+key, opts...)
	return sdk.NewFuncProvider(def, func(context.Context, sdk.Parameters, *sdk.ExecutionContext) (any, error) {
		return result, nil
	})
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := NewRegistry(nil)
	keys := []string{"courses.visible.v1", "projects.visible.v1", "contact-channels.visible.v1"}

	registered := make(map[sdk.Key]*sdk.RegisteredCapability)
	for _, k := range keys {
		p := staticProvider(k, k)
		c := sdk.FromDefinition(p.Definition(), p)
		require.NoError(t, reg.Register(c))
		registered[c.Key()] = c
	}

	for key, want := range registered {
		got, ok := reg.Get(key)
		require.True(t, ok)
		assert.Same(t, want, got)
		assert.True(t, reg.Has(key))
	}

	assert.False(t, reg.Has("technologies.by-category.v1"))
	got, ok := reg.Get("technologies.by-category.v1")
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.Equal(t, 3, reg.Len())
}

func TestRegistry_AllKeepsRegistrationOrder(t *testing.T) {
	reg := NewRegistry(nil)
	keys := []string{"z.last.v1", "a.first.v1", "m.middle.v1"}
	for _, k := range keys {
		p := staticProvider(k, nil)
		require.NoError(t, reg.Register(sdk.FromDefinition(p.Definition(), p)))
	}

	all := reg.All()
	require.Len(t, all, 3)
	for i, k := range keys {
		assert.Equal(t, sdk.Key(k), all[i].Key())
	}

	// The snapshot is unaffected by later registrations.
	p := staticProvider("b.late.v1", nil)
	require.NoError(t, reg.Register(sdk.FromDefinition(p.Definition(), p)))
	assert.Len(t, all, 3)
	assert.Len(t, reg.All(), 4)
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	reg := NewRegistry(nil)
	first := staticProvider("courses.visible.v1", "first")
	second := staticProvider("courses.visible.v1", "second")

	require.NoError(t, reg.Register(sdk.FromDefinition(first.Definition(), first)))
	err := reg.Register(sdk.FromDefinition(second.Definition(), second))

	require.Error(t, err)
	assert.ErrorIs(t, err, sdk.ErrDuplicateCapability)

	got, ok := reg.Get("courses.visible.v1")
	require.True(t, ok)
	assert.Same(t, first, got.Provider())
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_RejectsInvalidCapabilities(t *testing.T) {
	reg := NewRegistry(nil)

	assert.ErrorIs(t, reg.Register(nil), sdk.ErrNilDefinition)

	def := sdk.NewDefinition(sdk.MustKey("courses.visible.v1"), "")
	assert.ErrorIs(t, reg.Register(sdk.FromDefinition(def, nil)), sdk.ErrNilProvider)

	blank := sdk.NewDefinition("", "")
	p := sdk.NewFuncProvider(blank, nil)
	assert.ErrorIs(t, reg.Register(sdk.FromDefinition(blank, p)), sdk.ErrInvalidKey)

	assert.Zero(t, reg.Len())
}

func TestRegistry_ConcurrentReads(t *testing.T) {
	reg := NewRegistry(nil)
	for i := 0; i < 20; i++ {
		p := staticProvider(fmt.Sprintf("domain%d.read.v1", i), i)
		require.NoError(t, reg.Register(sdk.FromDefinition(p.Definition(), p)))
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := sdk.Key(fmt.Sprintf("domain%d.read.v1", i))
			assert.True(t, reg.Has(key))
			assert.Len(t, reg.All(), 20)
		}(i)
	}
	wg.Wait()
}

func TestRegistry_Latest(t *testing.T) {
	reg := NewRegistry(nil)
	for _, k := range []string{"projects.visible.v2", "projects.visible.v10", "projects.visible.v1", "projects.featured.v3", "legacy.list"} {
		p := staticProvider(k, k)
		require.NoError(t, reg.Register(sdk.FromDefinition(p.Definition(), p)))
	}

	latest, ok := reg.Latest("projects.visible")
	require.True(t, ok)
	assert.Equal(t, sdk.Key("projects.visible.v10"), latest.Key())

	latest, ok = reg.Latest("legacy.list")
	require.True(t, ok)
	assert.Equal(t, sdk.Key("legacy.list"), latest.Key())

	_, ok = reg.Latest("courses.visible")
	assert.False(t, ok)
}

func TestCatalog_Register(t *testing.T) {
	t.Run("wraps a bare definition with the provider", func(t *testing.T) {
		catalog := NewCatalog(NewRegistry(nil), nil)
		p := staticProvider("courses.visible.v1", nil, sdk.Public())

		require.NoError(t, catalog.Register(p.Definition(), p))

		provider, ok := catalog.Provider("courses.visible.v1")
		require.True(t, ok)
		assert.Same(t, p, provider)
	})

	t.Run("passes a registered capability through unchanged", func(t *testing.T) {
		reg := NewRegistry(nil)
		catalog := NewCatalog(reg, nil)
		bound := staticProvider("courses.visible.v1", "bound")
		other := staticProvider("courses.visible.v1", "other")
		composite := sdk.FromDefinition(bound.Definition(), bound)

		require.NoError(t, catalog.Register(composite, other))

		got, ok := reg.Get("courses.visible.v1")
		require.True(t, ok)
		assert.Same(t, composite, got)
		assert.Same(t, bound, got.Provider())
	})

	t.Run("rejects missing pieces", func(t *testing.T) {
		catalog := NewCatalog(NewRegistry(nil), nil)
		assert.ErrorIs(t, catalog.Register(nil, nil), sdk.ErrNilDefinition)
		assert.ErrorIs(t, catalog.Register(sdk.NewDefinition("a.b.v1", ""), nil), sdk.ErrNilProvider)
		assert.ErrorIs(t, catalog.RegisterProvider(nil), sdk.ErrNilProvider)
	})
}

func TestCatalog_Lookups(t *testing.T) {
	catalog := NewCatalog(NewRegistry(nil), nil)
	require.NoError(t, catalog.RegisterProvider(staticProvider("courses.visible.v1", nil, sdk.Public(), sdk.WithReturnType("array<Course>"))))
	require.NoError(t, catalog.RegisterProvider(staticProvider("projects.visible.v1", nil, sdk.Public())))
	require.NoError(t, catalog.RegisterProvider(staticProvider("projects.drafts.v1", nil)))

	def, ok := catalog.Definition("courses.visible.v1")
	require.True(t, ok)
	assert.Equal(t, "array<Course>", def.ReturnType())

	def, ok = catalog.Definition("unknown.key.v1")
	assert.False(t, ok)
	assert.Nil(t, def)

	provider, ok := catalog.Provider("unknown.key.v1")
	assert.False(t, ok)
	assert.Nil(t, provider)

	defs := catalog.Definitions()
	require.Len(t, defs, 3)
	for _, d := range defs {
		_, isRegistered := d.(*sdk.RegisteredCapability)
		assert.False(t, isRegistered, "definitions must not expose providers")
	}

	public := catalog.PublicDefinitions()
	require.Len(t, public, 2)
	assert.Equal(t, sdk.Key("courses.visible.v1"), public[0].Key())
	assert.Equal(t, sdk.Key("projects.visible.v1"), public[1].Key())
}

func TestCatalog_Match(t *testing.T) {
	catalog := NewCatalog(NewRegistry(nil), nil)
	for _, k := range []string{"courses.visible.v1", "projects.visible.v1", "projects.drafts.v1"} {
		require.NoError(t, catalog.RegisterProvider(staticProvider(k, nil)))
	}

	defs, err := catalog.Match("projects.*")
	require.NoError(t, err)
	assert.Len(t, defs, 2)

	defs, err = catalog.Match("*.visible.v1")
	require.NoError(t, err)
	assert.Len(t, defs, 2)

	defs, err = catalog.Match("{courses,projects}.visible.*")
	require.NoError(t, err)
	assert.Len(t, defs, 2)

	_, err = catalog.Match("[")
	assert.Error(t, err)
}

type testModule struct {
	name      string
	providers []sdk.Provider
	err       error
}

func (m testModule) Name() string { return m.name }

func (m testModule) RegisterCapabilities(catalog *Catalog) error {
	if m.err != nil {
		return m.err
	}
	for _, p := range m.providers {
		if err := catalog.RegisterProvider(p); err != nil {
			return err
		}
	}
	return nil
}

func TestRegisterModules(t *testing.T) {
	t.Run("registers every module", func(t *testing.T) {
		catalog := NewCatalog(NewRegistry(nil), nil)
		err := RegisterModules(catalog,
			testModule{name: "courses", providers: []sdk.Provider{staticProvider("courses.visible.v1", nil)}},
			testModule{name: "projects", providers: []sdk.Provider{staticProvider("projects.visible.v1", nil)}},
		)
		require.NoError(t, err)
		assert.Equal(t, 2, catalog.Len())
	})

	t.Run("aborts on a duplicate key across modules", func(t *testing.T) {
		catalog := NewCatalog(NewRegistry(nil), nil)
		err := RegisterModules(catalog,
			testModule{name: "a", providers: []sdk.Provider{staticProvider("courses.visible.v1", nil)}},
			testModule{name: "b", providers: []sdk.Provider{staticProvider("courses.visible.v1", nil)}},
			testModule{name: "c", providers: []sdk.Provider{staticProvider("projects.visible.v1", nil)}},
		)
		require.Error(t, err)
		assert.ErrorIs(t, err, sdk.ErrDuplicateCapability)
		assert.Contains(t, err.Error(), "module b")
		assert.False(t, catalog.Has("projects.visible.v1"))
	})

	t.Run("propagates module errors", func(t *testing.T) {
		boom := errors.New("boom")
		err := RegisterModules(NewCatalog(NewRegistry(nil), nil), testModule{name: "broken", err: boom})
		assert.ErrorIs(t, err, boom)
	})
}
