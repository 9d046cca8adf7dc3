package capabilities

import (
	"github.com/felixgeelhaar/folio/internal/capability/registry"
	"github.com/felixgeelhaar/folio/internal/capability/sdk"
	"github.com/felixgeelhaar/folio/internal/portfolio/domain"
)

// Module registers the portfolio providers with the capability catalog.
type Module struct {
	providers []sdk.Provider
}

// NewModule builds every portfolio provider over the given repositories.
func NewModule(
	projects domain.ProjectRepository,
	courses domain.CourseRepository,
	contacts domain.ContactChannelRepository,
	technologies domain.TechnologyRepository,
) *Module {
	return &Module{providers: []sdk.Provider{
		NewProjectsProvider(projects),
		NewCoursesProvider(courses),
		NewContactChannelsProvider(contacts),
		NewTechnologiesProvider(technologies),
	}}
}

func (m *Module) Name() string {
	return "portfolio"
}

func (m *Module) RegisterCapabilities(catalog *registry.Catalog) error {
	for _, p := range m.providers {
		if err := catalog.RegisterProvider(p); err != nil {
			return err
		}
	}
	return nil
}
