// Package configloader is the startup-blocking initializer: it produces the
// application Configuration during phase 1, before any other module is
// initialized.
package configloader

import (
	"context"
	"fmt"

	"github.com/GoCodeAlone/initorder"
	"github.com/GoCodeAlone/initorder/lifecycle"
)

// ModuleName is the name of this module
const ModuleName = "configloader"

// ServiceName is the name of the service provided by this module
const ServiceName = "configloader"

// Module runs the Loader as a phase 1 initializer.
type Module struct {
	config *LoaderConfig
	loader *Loader
}

// NewModule creates a new configloader module
func NewModule() *Module {
	return &Module{}
}

// Name returns the name of the module
func (m *Module) Name() string {
	return ModuleName
}

// RegisterConfig registers the loader config section
func (m *Module) RegisterConfig(app initorder.Application) error {
	m.config = &LoaderConfig{}
	app.RegisterConfigSection(ModuleName, initorder.NewStdConfigProvider(m.config))
	return nil
}

// Initialize records the factory milestone and performs the load. It is
// called in phase 1, concurrently with any other initializers.
func (m *Module) Initialize(ctx context.Context, app initorder.Application) error {
	cfg, err := app.GetConfigSection(ModuleName)
	if err != nil {
		return fmt.Errorf("failed to get config section '%s': %w", ModuleName, err)
	}
	m.config = cfg.GetConfig().(*LoaderConfig)

	lifecycle.NewEmitter(app.Milestones(), MilestoneSource).Emit(ctx,
		lifecycle.EventTypeInitializerFactory, "FACTORY FUNCTION CALLED")

	m.loader = NewLoader(m.config, app.Milestones(), app.Logger())
	return m.loader.Load(ctx)
}

// Init runs in phase 2. The configuration is already loaded by then.
func (m *Module) Init(app initorder.Application) error {
	if m.loader == nil {
		return fmt.Errorf("%w: %s initializer has not run", initorder.ErrNotInitialized, ModuleName)
	}
	app.Logger().Info("Config loader module initialized")
	return nil
}

// ProvidesServices returns the loader as a Provider.
func (m *Module) ProvidesServices() []initorder.ServiceProvider {
	return []initorder.ServiceProvider{
		{
			Name:        ServiceName,
			Description: "Loaded application configuration",
			Instance:    Provider(m.loader),
		},
	}
}
