package queries

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/folio/internal/capability/sdk"
	"github.com/felixgeelhaar/folio/internal/content/domain"
	"github.com/felixgeelhaar/folio/internal/content/section"
	"github.com/felixgeelhaar/folio/internal/content/template"
	"github.com/felixgeelhaar/folio/pkg/observability"
)

// DefaultPageCacheTTL is used when caching is enabled without a TTL.
const DefaultPageCacheTTL = 5 * time.Minute

// Reasons a section is left out of a rendered page.
const (
	SkipUnknownTemplate = "unknown_template"
	SkipMissingRequired = "missing_required"
)

// TemplateLookup finds section templates. *template.Registry satisfies it.
type TemplateLookup interface {
	Get(key string) (*template.Definition, bool)
}

// SectionBinder injects capability data into section data. *section.Binder satisfies it.
type SectionBinder interface {
	Bind(ctx context.Context, data section.Data, tmpl *template.Definition) (section.Data, error)
}

// RenderPageQuery asks for a page rendered in one locale.
type RenderPageQuery struct {
	Slug   string
	Locale string
	// IncludeDrafts renders unpublished pages. Draft renders bypass the cache.
	IncludeDrafts bool
}

// RenderedSection is one section with its fields resolved against its template.
// Fields hold JSON-decoded values whether or not the page came from the cache.
type RenderedSection struct {
	ID          uuid.UUID      `json:"id"`
	TemplateKey string         `json:"template_key"`
	Slot        string         `json:"slot"`
	Position    int            `json:"position"`
	Anchor      string         `json:"anchor,omitempty"`
	Fields      map[string]any `json:"fields"`
}

// RenderedPage is a page ready for presentation.
type RenderedPage struct {
	ID         uuid.UUID         `json:"id"`
	Slug       string            `json:"slug"`
	Title      string            `json:"title"`
	Locale     string            `json:"locale"`
	Published  bool              `json:"published"`
	Sections   []RenderedSection `json:"sections"`
	RenderedAt time.Time         `json:"rendered_at"`
}

// Slot returns the sections placed in slot, in order.
func (p *RenderedPage) Slot(slot string) []RenderedSection {
	var out []RenderedSection
	for _, s := range p.Sections {
		if s.Slot == slot {
			out = append(out, s)
		}
	}
	return out
}

// RenderPageHandler handles the RenderPageQuery.
type RenderPageHandler struct {
	pages         domain.PageRepository
	sections      section.Repository
	templates     TemplateLookup
	binder        SectionBinder
	cache         PageCache
	cacheTTL      time.Duration
	defaultLocale string
	metrics       observability.Metrics
	logger        *slog.Logger
	now           func() time.Time
}

// NewRenderPageHandler creates a new RenderPageHandler without a cache.
func NewRenderPageHandler(
	pages domain.PageRepository,
	sections section.Repository,
	templates TemplateLookup,
	binder SectionBinder,
	logger *slog.Logger,
) *RenderPageHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RenderPageHandler{
		pages:         pages,
		sections:      sections,
		templates:     templates,
		binder:        binder,
		defaultLocale: sdk.DefaultLocale,
		metrics:       observability.NoopMetrics{},
		logger:        logger,
		now:           time.Now,
	}
}

// WithCache caches published renders for ttl.
func (h *RenderPageHandler) WithCache(cache PageCache, ttl time.Duration) *RenderPageHandler {
	if ttl <= 0 {
		ttl = DefaultPageCacheTTL
	}
	h.cache = cache
	h.cacheTTL = ttl
	return h
}

func (h *RenderPageHandler) WithMetrics(metrics observability.Metrics) *RenderPageHandler {
	if metrics != nil {
		h.metrics = metrics
	}
	return h
}

// WithDefaultLocale sets the locale used when neither the query nor the page names one.
func (h *RenderPageHandler) WithDefaultLocale(locale string) *RenderPageHandler {
	if locale = strings.TrimSpace(locale); locale != "" {
		h.defaultLocale = locale
	}
	return h
}

// Handle executes the RenderPageQuery. A section that cannot be rendered is
// left out; only failures to load the page or its sections fail the query.
func (h *RenderPageHandler) Handle(ctx context.Context, query RenderPageQuery) (*RenderedPage, error) {
	slug := domain.NormalizeSlug(query.Slug)
	locale := strings.TrimSpace(query.Locale)
	useCache := h.cache != nil && !query.IncludeDrafts

	if useCache && locale != "" {
		if page, ok := h.cached(ctx, PageCacheKey(slug, locale)); ok {
			return page, nil
		}
	}

	page, err := h.pages.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !page.IsPublished() && !query.IncludeDrafts {
		return nil, domain.ErrPageNotFound
	}

	if locale == "" {
		locale = page.Locale()
	}
	if locale == "" {
		locale = h.defaultLocale
	}

	if useCache && query.Locale == "" {
		if cached, ok := h.cached(ctx, PageCacheKey(slug, locale)); ok {
			return cached, nil
		}
	}

	rendered, err := h.render(observability.WithLocale(ctx, locale), page, locale)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(rendered)
	if err != nil {
		h.logger.WarnContext(ctx, "page not cached", "slug", slug, "error", err)
		return rendered, nil
	}
	if useCache {
		h.store(ctx, PageCacheKey(slug, locale), raw)
	}
	return decodePage(raw)
}

// decodePage gives fresh and cached renders the same field types: JSON
// numbers are float64, lists are []any and objects are map[string]any.
func decodePage(raw []byte) (*RenderedPage, error) {
	var page RenderedPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (h *RenderPageHandler) render(ctx context.Context, page *domain.Page, locale string) (*RenderedPage, error) {
	all, err := h.sections.FindByPage(ctx, page.ID())
	if err != nil {
		return nil, err
	}

	now := h.now()
	visible := make([]*section.Section, 0, len(all))
	for _, s := range all {
		if s.IsVisibleAt(now) && s.MatchesLocale(locale) {
			visible = append(visible, s)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		if visible[i].Slot() != visible[j].Slot() {
			return visible[i].Slot() < visible[j].Slot()
		}
		return visible[i].Position() < visible[j].Position()
	})

	out := &RenderedPage{
		ID:         page.ID(),
		Slug:       page.Slug(),
		Title:      page.Title(),
		Locale:     locale,
		Published:  page.IsPublished(),
		Sections:   make([]RenderedSection, 0, len(visible)),
		RenderedAt: now.UTC(),
	}
	for _, s := range visible {
		rendered, ok := h.renderSection(ctx, page, s)
		if !ok {
			continue
		}
		out.Sections = append(out.Sections, rendered)
		h.metrics.Counter(observability.MetricSectionsRendered, 1, observability.T("template", s.TemplateKey()))
	}
	return out, nil
}

func (h *RenderPageHandler) renderSection(ctx context.Context, page *domain.Page, s *section.Section) (RenderedSection, bool) {
	tmpl, ok := h.templates.Get(s.TemplateKey())
	if !ok {
		h.logger.WarnContext(ctx, "skipping section with unknown template",
			"page", page.Slug(),
			"section_id", s.ID(),
			"template_key", s.TemplateKey(),
		)
		h.skipped(SkipUnknownTemplate)
		return RenderedSection{}, false
	}

	data, err := h.binder.Bind(ctx, s.Data(), tmpl)
	if err != nil {
		h.logger.WarnContext(ctx, "data source failed, rendering without bound data",
			"page", page.Slug(),
			"section_id", s.ID(),
			"template_key", tmpl.Key,
			"error", err,
		)
		data = s.Data()
		if tmpl.HasCapabilitySource() {
			delete(data, tmpl.DataSource.TargetField)
		}
	}

	if !section.RequiredSatisfied(data, tmpl) {
		h.logger.DebugContext(ctx, "skipping section without required fields",
			"page", page.Slug(),
			"section_id", s.ID(),
			"template_key", tmpl.Key,
		)
		h.skipped(SkipMissingRequired)
		return RenderedSection{}, false
	}

	return RenderedSection{
		ID:          s.ID(),
		TemplateKey: s.TemplateKey(),
		Slot:        s.Slot(),
		Position:    s.Position(),
		Anchor:      s.Anchor(),
		Fields:      section.ResolveFields(data, tmpl),
	}, true
}

func (h *RenderPageHandler) skipped(reason string) {
	h.metrics.Counter(observability.MetricSectionsSkipped, 1, observability.T("reason", reason))
}

func (h *RenderPageHandler) cached(ctx context.Context, key string) (*RenderedPage, bool) {
	raw, ok, err := h.cache.Get(ctx, key)
	if err != nil {
		h.logger.WarnContext(ctx, "page cache read failed", "key", key, "error", err)
		return nil, false
	}
	if !ok {
		h.metrics.Counter(observability.MetricPageCacheMisses, 1)
		return nil, false
	}

	page, err := decodePage(raw)
	if err != nil {
		h.logger.WarnContext(ctx, "discarding unreadable cache entry", "key", key, "error", err)
		return nil, false
	}
	h.metrics.Counter(observability.MetricPageCacheHits, 1)
	return page, true
}

func (h *RenderPageHandler) store(ctx context.Context, key string, raw []byte) {
	if err := h.cache.Set(ctx, key, raw, h.cacheTTL); err != nil {
		h.logger.WarnContext(ctx, "page cache write failed", "key", key, "error", err)
	}
}

// IsNotFound reports whether err means the page does not exist or is not published.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrPageNotFound)
}
