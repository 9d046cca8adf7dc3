package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/folio/internal/capability/sdk"
	"github.com/felixgeelhaar/folio/internal/content/application/commands"
	"github.com/felixgeelhaar/folio/internal/content/application/queries"
	"github.com/felixgeelhaar/folio/internal/content/domain"
	"github.com/felixgeelhaar/folio/internal/content/section"
	"github.com/felixgeelhaar/folio/internal/content/template"
	"github.com/felixgeelhaar/folio/pkg/observability"
)

// CapabilityCatalog lists registered capabilities. *registry.Catalog satisfies it.
type CapabilityCatalog interface {
	Definitions() []sdk.Definition
	PublicDefinitions() []sdk.Definition
	Match(pattern string) ([]sdk.Definition, error)
	Definition(key sdk.Key) (sdk.Definition, bool)
}

// CapabilityResolver runs capabilities. *registry.Resolver satisfies it.
type CapabilityResolver interface {
	Resolve(ctx context.Context, key sdk.Key, params sdk.Parameters) (any, error)
}

// TemplateCatalog lists section templates. *template.Registry satisfies it.
type TemplateCatalog interface {
	All() []*template.Definition
	Get(key string) (*template.Definition, bool)
}

type PageRenderer interface {
	Handle(ctx context.Context, query queries.RenderPageQuery) (*queries.RenderedPage, error)
}

type PageLister interface {
	Handle(ctx context.Context) ([]queries.PageDTO, error)
}

type PageSaver interface {
	Handle(ctx context.Context, cmd commands.SavePageCommand) (*commands.SavePageResult, error)
}

type SectionSaver interface {
	Handle(ctx context.Context, cmd commands.SaveSectionCommand) (*commands.SaveSectionResult, error)
}

type SectionDeleter interface {
	Handle(ctx context.Context, cmd commands.DeleteSectionCommand) error
}

// Dependencies are the application services the API exposes.
type Dependencies struct {
	Catalog       CapabilityCatalog
	Resolver      CapabilityResolver
	Templates     TemplateCatalog
	RenderPage    PageRenderer
	ListPages     PageLister
	SavePage      PageSaver
	SaveSection   SectionSaver
	DeleteSection SectionDeleter
	Health        *observability.HealthRegistry
	Metrics       http.Handler
}

// GET /api/capabilities?public=true&match=projects.*
func (s *Server) listCapabilities(w http.ResponseWriter, r *http.Request) {
	var defs []sdk.Definition
	if pattern := r.URL.Query().Get("match"); pattern != "" {
		matched, err := s.deps.Catalog.Match(pattern)
		if err != nil {
			writeAPIError(w, badRequest(err.Error()))
			return
		}
		defs = matched
	} else {
		defs = s.deps.Catalog.Definitions()
	}

	publicOnly := parseBoolParam(r, "public", false)
	out := make([]sdk.Descriptor, 0, len(defs))
	for _, def := range defs {
		if publicOnly && !def.IsPublic() {
			continue
		}
		out = append(out, sdk.Describe(def))
	}
	writeJSON(w, http.StatusOK, map[string]any{"capabilities": out})
}

func (s *Server) getCapability(w http.ResponseWriter, r *http.Request) {
	key := sdk.Key(chi.URLParam(r, "key"))
	def, ok := s.deps.Catalog.Definition(key)
	if !ok {
		writeAPIError(w, notFound("capability not registered: "+string(key)))
		return
	}
	writeJSON(w, http.StatusOK, sdk.Describe(def))
}

// POST /api/capabilities/{key}/resolve with the parameters as a JSON object.
// An unregistered key resolves to null.
func (s *Server) resolveCapability(w http.ResponseWriter, r *http.Request) {
	key, err := sdk.NewKey(chi.URLParam(r, "key"))
	if err != nil {
		writeAPIError(w, badRequest(err.Error()))
		return
	}

	params := sdk.Parameters{}
	if apiErr := decodeBody(w, r, &params); apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	ctx := r.Context()
	if locale := r.URL.Query().Get("locale"); locale != "" {
		ctx = observability.WithLocale(ctx, locale)
	}

	result, err := s.deps.Resolver.Resolve(ctx, key, params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"key": key, "data": result})
}

func (s *Server) listTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"templates": s.deps.Templates.All()})
}

func (s *Server) getTemplate(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	tmpl, ok := s.deps.Templates.Get(key)
	if !ok {
		writeAPIError(w, notFound("unknown template: "+key))
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}

func (s *Server) listPages(w http.ResponseWriter, r *http.Request) {
	pages, err := s.deps.ListPages.Handle(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pages": pages})
}

// GET /api/pages/{slug}?locale=nl&drafts=true
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request) {
	page, err := s.deps.RenderPage.Handle(r.Context(), queries.RenderPageQuery{
		Slug:          chi.URLParam(r, "slug"),
		Locale:        r.URL.Query().Get("locale"),
		IncludeDrafts: parseBoolParam(r, "drafts", false),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

type savePageRequest struct {
	Title     string `json:"title"`
	Locale    string `json:"locale"`
	Published bool   `json:"published"`
}

func (s *Server) savePage(w http.ResponseWriter, r *http.Request) {
	var req savePageRequest
	if apiErr := decodeBody(w, r, &req); apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	result, err := s.deps.SavePage.Handle(r.Context(), commands.SavePageCommand{
		Slug:      chi.URLParam(r, "slug"),
		Title:     req.Title,
		Locale:    req.Locale,
		Published: req.Published,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{"id": result.PageID, "slug": result.Slug, "created": result.Created})
}

type saveSectionRequest struct {
	ID           *uuid.UUID     `json:"id"`
	TemplateKey  string         `json:"template_key"`
	Slot         string         `json:"slot"`
	Position     int            `json:"position"`
	Anchor       string         `json:"anchor"`
	Locale       string         `json:"locale"`
	Data         map[string]any `json:"data"`
	Active       *bool          `json:"active"`
	VisibleFrom  *time.Time     `json:"visible_from"`
	VisibleUntil *time.Time     `json:"visible_until"`
}

// POST /api/pages/{slug}/sections creates a section, or updates the one named by "id".
func (s *Server) saveSection(w http.ResponseWriter, r *http.Request) {
	var req saveSectionRequest
	if apiErr := decodeBody(w, r, &req); apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}

	cmd := commands.SaveSectionCommand{
		PageSlug:     chi.URLParam(r, "slug"),
		TemplateKey:  req.TemplateKey,
		Slot:         req.Slot,
		Position:     req.Position,
		Anchor:       req.Anchor,
		Locale:       req.Locale,
		Data:         section.Data(req.Data),
		Active:       req.Active,
		VisibleFrom:  req.VisibleFrom,
		VisibleUntil: req.VisibleUntil,
	}
	if req.ID != nil {
		cmd.SectionID = *req.ID
	}

	result, err := s.deps.SaveSection.Handle(r.Context(), cmd)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{"id": result.SectionID, "created": result.Created})
}

func (s *Server) deleteSection(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeAPIError(w, badRequest("invalid section id"))
		return
	}
	if err := s.deps.DeleteSection.Handle(r.Context(), commands.DeleteSectionCommand{SectionID: id}); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeError maps application errors onto HTTP responses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs section.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		writeAPIError(w, &APIError{
			Status:  http.StatusUnprocessableEntity,
			Code:    "invalid_section_data",
			Message: "section data failed validation",
			Fields:  verrs,
		})
	case errors.Is(err, domain.ErrPageNotFound), errors.Is(err, section.ErrSectionNotFound):
		writeAPIError(w, notFound(err.Error()))
	case errors.Is(err, section.ErrUnknownTemplate),
		errors.Is(err, section.ErrSlotNotAllowed),
		errors.Is(err, section.ErrEmptyTemplateKey),
		errors.Is(err, section.ErrNegativePosition),
		errors.Is(err, section.ErrInvalidVisibility),
		errors.Is(err, domain.ErrInvalidSlug),
		errors.Is(err, domain.ErrEmptyPageTitle):
		writeAPIError(w, badRequest(err.Error()))
	case errors.Is(err, sdk.ErrCircuitOpen), errors.Is(err, context.DeadlineExceeded):
		writeAPIError(w, &APIError{
			Status:  http.StatusServiceUnavailable,
			Code:    "capability_unavailable",
			Message: err.Error(),
		})
	default:
		s.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeAPIError(w, errInternal)
	}
}
