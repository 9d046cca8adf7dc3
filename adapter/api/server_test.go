package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/folio/internal/capability/registry"
	"github.com/felixgeelhaar/folio/internal/capability/sdk"
	"github.com/felixgeelhaar/folio/internal/content/application/commands"
	"github.com/felixgeelhaar/folio/internal/content/application/queries"
	"github.com/felixgeelhaar/folio/internal/content/domain"
	"github.com/felixgeelhaar/folio/internal/content/section"
	"github.com/felixgeelhaar/folio/internal/content/template"
	"github.com/felixgeelhaar/folio/pkg/observability"
)

type fakeRenderer struct {
	last queries.RenderPageQuery
	page *queries.RenderedPage
	err  error
}

func (f *fakeRenderer) Handle(_ context.Context, q queries.RenderPageQuery) (*queries.RenderedPage, error) {
	f.last = q
	return f.page, f.err
}

type fakeLister struct{ pages []queries.PageDTO }

func (f fakeLister) Handle(context.Context) ([]queries.PageDTO, error) { return f.pages, nil }

type fakePageSaver struct{ last commands.SavePageCommand }

func (f *fakePageSaver) Handle(_ context.Context, cmd commands.SavePageCommand) (*commands.SavePageResult, error) {
	f.last = cmd
	if cmd.Title == "" {
		return nil, domain.ErrEmptyPageTitle
	}
	return &commands.SavePageResult{PageID: uuid.New(), Slug: cmd.Slug, Created: true}, nil
}

type fakeSectionSaver struct {
	last commands.SaveSectionCommand
	err  error
}

func (f *fakeSectionSaver) Handle(_ context.Context, cmd commands.SaveSectionCommand) (*commands.SaveSectionResult, error) {
	f.last = cmd
	if f.err != nil {
		return nil, f.err
	}
	return &commands.SaveSectionResult{SectionID: uuid.New(), Created: cmd.SectionID == uuid.Nil}, nil
}

type fakeSectionDeleter struct{ deleted []uuid.UUID }

func (f *fakeSectionDeleter) Handle(_ context.Context, cmd commands.DeleteSectionCommand) error {
	if cmd.SectionID == uuid.Nil {
		return section.ErrSectionNotFound
	}
	f.deleted = append(f.deleted, cmd.SectionID)
	return nil
}

type fixture struct {
	server   *Server
	renderer *fakeRenderer
	pages    *fakePageSaver
	sections *fakeSectionSaver
	deleter  *fakeSectionDeleter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	catalog := registry.NewCatalog(registry.NewRegistry(nil), nil)
	require.NoError(t, catalog.RegisterProvider(sdk.NewFuncProvider(
		sdk.NewDefinition(sdk.MustKey("projects.visible.v1"), "Visible projects",
			sdk.WithParameter(sdk.ParameterSpec{Name: "limit", Type: "integer"}),
			sdk.Public(),
		),
		func(_ context.Context, params sdk.Parameters, ec *sdk.ExecutionContext) (any, error) {
			items := []map[string]any{{"slug": "a", "locale": ec.Locale}, {"slug": "b"}}
			return sdk.ApplyLimit(items, params), nil
		},
	)))
	require.NoError(t, catalog.RegisterProvider(sdk.NewFuncProvider(
		sdk.NewDefinition(sdk.MustKey("internal.stats.v1"), "Internal"),
		func(context.Context, sdk.Parameters, *sdk.ExecutionContext) (any, error) {
			return nil, errors.New("boom")
		},
	)))

	templates, err := template.LoadDefault()
	require.NoError(t, err)

	health := observability.NewHealthRegistry()
	health.Register("database", observability.DatabaseHealthChecker(func(context.Context) error { return nil }))

	f := &fixture{
		renderer: &fakeRenderer{},
		pages:    &fakePageSaver{},
		sections: &fakeSectionSaver{},
		deleter:  &fakeSectionDeleter{},
	}
	f.server = NewServer(DefaultServerConfig(), Dependencies{
		Catalog:       catalog,
		Resolver:      registry.NewResolver(catalog, nil, nil),
		Templates:     templates,
		RenderPage:    f.renderer,
		ListPages:     fakeLister{pages: []queries.PageDTO{{Slug: "home", Title: "Home"}}},
		SavePage:      f.pages,
		SaveSection:   f.sections,
		DeleteSection: f.deleter,
		Health:        health,
		Metrics:       observability.NewPrometheusMetrics().Handler(),
	}, nil)
	return f
}

func (f *fixture) do(t *testing.T, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec, body := f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec, _ = f.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCapabilities(t *testing.T) {
	f := newFixture(t)

	rec, body := f.do(t, http.MethodGet, "/api/capabilities", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["capabilities"], 2)

	_, body = f.do(t, http.MethodGet, "/api/capabilities?public=true", "")
	caps := body["capabilities"].([]any)
	require.Len(t, caps, 1)
	assert.Equal(t, "projects.visible.v1", caps[0].(map[string]any)["key"])

	_, body = f.do(t, http.MethodGet, "/api/capabilities?match=internal.*", "")
	assert.Len(t, body["capabilities"], 1)

	rec, body = f.do(t, http.MethodGet, "/api/capabilities/projects.visible.v1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["public"])

	rec, body = f.do(t, http.MethodGet, "/api/capabilities/nope.v1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", body["error"].(map[string]any)["code"])
}

func TestResolveCapability(t *testing.T) {
	f := newFixture(t)

	rec, body := f.do(t, http.MethodPost, "/api/capabilities/projects.visible.v1/resolve?locale=nl", `{"limit": 1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "nl", data[0].(map[string]any)["locale"])

	rec, body = f.do(t, http.MethodPost, "/api/capabilities/projects.visible.v1/resolve", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["data"], 2)

	rec, body = f.do(t, http.MethodPost, "/api/capabilities/unknown.thing.v1/resolve", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, "data")
	assert.Nil(t, body["data"])

	rec, _ = f.do(t, http.MethodPost, "/api/capabilities/internal.stats.v1/resolve", `{}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec, _ = f.do(t, http.MethodPost, "/api/capabilities/projects.visible.v1/resolve", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTemplates(t *testing.T) {
	f := newFixture(t)

	rec, body := f.do(t, http.MethodGet, "/api/templates", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, body["templates"])

	rec, body = f.do(t, http.MethodGet, "/api/templates/hero_primary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hero_primary", body["key"])

	rec, _ = f.do(t, http.MethodGet, "/api/templates/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPages(t *testing.T) {
	f := newFixture(t)

	_, body := f.do(t, http.MethodGet, "/api/pages", "")
	assert.Len(t, body["pages"], 1)

	f.renderer.page = &queries.RenderedPage{Slug: "home", Title: "Home", Locale: "nl"}
	rec, body := f.do(t, http.MethodGet, "/api/pages/home?locale=nl&drafts=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "home", body["slug"])
	assert.Equal(t, queries.RenderPageQuery{Slug: "home", Locale: "nl", IncludeDrafts: true}, f.renderer.last)

	f.renderer.err = domain.ErrPageNotFound
	rec, _ = f.do(t, http.MethodGet, "/api/pages/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, body = f.do(t, http.MethodPut, "/api/pages/about", `{"title":"About","published":true}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "about", body["slug"])
	assert.True(t, f.pages.last.Published)

	rec, _ = f.do(t, http.MethodPut, "/api/pages/about", `{"title":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSections(t *testing.T) {
	f := newFixture(t)

	rec, body := f.do(t, http.MethodPost, "/api/pages/home/sections",
		`{"template_key":"hero_primary","slot":"hero","data":{"title":"Hi"},"visible_from":"2025-01-01T00:00:00Z"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, body["created"])
	assert.Equal(t, "home", f.sections.last.PageSlug)
	assert.Equal(t, section.Data{"title": "Hi"}, f.sections.last.Data)
	require.NotNil(t, f.sections.last.VisibleFrom)

	id := uuid.New()
	rec, _ = f.do(t, http.MethodPost, "/api/pages/home/sections",
		`{"id":"`+id.String()+`","template_key":"hero_primary","slot":"hero"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, f.sections.last.SectionID)

	f.sections.err = section.ValidationErrors{"title": {"is required"}}
	rec, body = f.do(t, http.MethodPost, "/api/pages/home/sections", `{"template_key":"hero_primary","slot":"hero"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	fields := body["error"].(map[string]any)["fields"].(map[string]any)
	assert.Equal(t, []any{"is required"}, fields["title"])

	f.sections.err = section.ErrSlotNotAllowed
	rec, _ = f.do(t, http.MethodPost, "/api/pages/home/sections", `{"template_key":"hero_primary","slot":"main"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = f.do(t, http.MethodDelete, "/api/sections/"+id.String(), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []uuid.UUID{id}, f.deleter.deleted)

	rec, _ = f.do(t, http.MethodDelete, "/api/sections/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = f.do(t, http.MethodDelete, "/api/sections/"+uuid.Nil.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
