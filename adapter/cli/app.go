package cli

import (
	"github.com/felixgeelhaar/folio/adapter/api"
	folioMCP "github.com/felixgeelhaar/folio/adapter/mcp"
	internalApp "github.com/felixgeelhaar/folio/internal/app"
	"github.com/felixgeelhaar/folio/internal/capability/registry"
	"github.com/felixgeelhaar/folio/internal/content/application/commands"
	"github.com/felixgeelhaar/folio/internal/content/application/queries"
	"github.com/felixgeelhaar/folio/internal/content/template"
	"github.com/felixgeelhaar/folio/pkg/config"
)

// App holds the CLI application dependencies.
type App struct {
	Config *config.Config

	// Capabilities
	Catalog  *registry.Catalog
	Resolver *registry.Resolver

	// Content
	Templates            *template.Registry
	RenderPageHandler    *queries.RenderPageHandler
	ListPagesHandler     *queries.ListPagesHandler
	SavePageHandler      *commands.SavePageHandler
	SaveSectionHandler   *commands.SaveSectionHandler
	DeleteSectionHandler *commands.DeleteSectionHandler

	container *internalApp.Container
}

// NewApp creates a CLI application backed by container.
func NewApp(container *internalApp.Container) *App {
	return &App{
		Config:               container.Config,
		Catalog:              container.Catalog,
		Resolver:             container.Resolver,
		Templates:            container.Templates,
		RenderPageHandler:    container.RenderPageHandler,
		ListPagesHandler:     container.ListPagesHandler,
		SavePageHandler:      container.SavePageHandler,
		SaveSectionHandler:   container.SaveSectionHandler,
		DeleteSectionHandler: container.DeleteSectionHandler,
		container:            container,
	}
}

// Container returns the container the app was built from.
func (a *App) Container() *internalApp.Container {
	return a.container
}

// APIDependencies wires the HTTP API to the container.
func (a *App) APIDependencies() api.Dependencies {
	deps := api.Dependencies{
		Catalog:       a.Catalog,
		Resolver:      a.Resolver,
		Templates:     a.Templates,
		RenderPage:    a.RenderPageHandler,
		ListPages:     a.ListPagesHandler,
		SavePage:      a.SavePageHandler,
		SaveSection:   a.SaveSectionHandler,
		DeleteSection: a.DeleteSectionHandler,
	}
	if a.container != nil {
		deps.Health = a.container.Health
		if a.container.Metrics != nil {
			deps.Metrics = a.container.Metrics.Handler()
		}
	}
	return deps
}

// MCPDependencies wires the MCP tools to the container.
func (a *App) MCPDependencies() folioMCP.Dependencies {
	return folioMCP.Dependencies{
		Catalog:    a.Catalog,
		Resolver:   a.Resolver,
		Templates:  a.Templates,
		RenderPage: a.RenderPageHandler,
	}
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}

// RequireApp returns the application or ErrNotInitialized.
func RequireApp() (*App, error) {
	if app == nil || app.container == nil {
		return nil, ErrNotInitialized
	}
	return app, nil
}
