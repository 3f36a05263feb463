// Package router is the lazy-load gate: it maps paths to views and
// route-scoped effects, constructing both on every activation and
// disposing the effects when the route is left.
package router

import (
	"context"
	"fmt"

	"github.com/GoCodeAlone/initorder"
	"github.com/GoCodeAlone/initorder/modules/configloader"
	"github.com/GoCodeAlone/initorder/modules/effects"
	"github.com/GoCodeAlone/initorder/modules/store"
)

// ModuleName is the name of this module
const ModuleName = "router"

// ServiceName is the name of the *Router service
const ServiceName = "router"

// Module builds the Router. Routes are added by other modules during their
// Init; the initial navigation is left to the caller once the application
// is ready.
type Module struct {
	config *Config
	router *Router
}

// NewModule creates a new router module
func NewModule() *Module {
	return &Module{}
}

// Name returns the name of the module
func (m *Module) Name() string {
	return ModuleName
}

// RegisterConfig registers the router config section
func (m *Module) RegisterConfig(app initorder.Application) error {
	app.RegisterConfigSection(ModuleName, initorder.NewStdConfigProvider(&Config{}))
	return nil
}

// Dependencies returns the names of modules this module depends on.
func (m *Module) Dependencies() []string {
	return []string{configloader.ModuleName, effects.ModuleName, store.ModuleName}
}

// Init creates the router.
func (m *Module) Init(app initorder.Application) error {
	cfg, err := app.GetConfigSection(ModuleName)
	if err != nil {
		return fmt.Errorf("failed to get config section '%s': %w", ModuleName, err)
	}
	m.config = cfg.GetConfig().(*Config)

	var (
		registrar *effects.Registrar
		st        *store.Store
		provider  configloader.Provider
	)
	if err := app.GetService(effects.RegistrarServiceName, &registrar); err != nil {
		return fmt.Errorf("router requires %s: %w", effects.RegistrarServiceName, err)
	}
	if err := app.GetService(store.ServiceName, &st); err != nil {
		return fmt.Errorf("router requires %s: %w", store.ServiceName, err)
	}
	if err := app.GetService(configloader.ServiceName, &provider); err != nil {
		return fmt.Errorf("router requires %s: %w", configloader.ServiceName, err)
	}

	m.router = New(registrar, st, provider, app.Milestones(), app.Logger(), Options{
		RetainRouteEffects: m.config.RetainRouteEffects,
	})
	app.Logger().Info("Router initialized", "retainRouteEffects", m.config.RetainRouteEffects)
	return nil
}

// Stop deactivates the current route.
func (m *Module) Stop(ctx context.Context) error {
	if m.router == nil {
		return nil
	}
	return m.router.Close(ctx)
}

// ProvidesServices returns the router.
func (m *Module) ProvidesServices() []initorder.ServiceProvider {
	return []initorder.ServiceProvider{
		{
			Name:        ServiceName,
			Description: "Route activation and lazy-load gate",
			Instance:    m.router,
		},
	}
}

// Router returns the router created in Init.
func (m *Module) Router() *Router {
	return m.router
}

// InitialRoute returns the configured initial path.
func (m *Module) InitialRoute() string {
	if m.config == nil {
		return "/"
	}
	return m.config.InitialRoute
}
