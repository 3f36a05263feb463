// Package views provides the route views and the HTTP surface: state and
// milestone inspection, the load/init commands, free-form dispatch and
// navigation.
package views

import (
	"context"
	"fmt"

	"github.com/go-chi/chi/v5"

	"github.com/GoCodeAlone/initorder"
	"github.com/GoCodeAlone/initorder/lifecycle"
	"github.com/GoCodeAlone/initorder/modules/chimux"
	"github.com/GoCodeAlone/initorder/modules/configloader"
	"github.com/GoCodeAlone/initorder/modules/effects"
	"github.com/GoCodeAlone/initorder/modules/router"
	"github.com/GoCodeAlone/initorder/modules/store"
)

// ModuleName is the name of this module
const ModuleName = "views"

// MilestonesServiceName is the optional *lifecycle.MemoryStore service
// backing GET /milestones.
const MilestonesServiceName = "milestones"

// Module adds the application routes to the router and mounts the HTTP
// handlers on the chi router.
type Module struct {
	handlers *Handlers
	shell    *Shell
	sink     lifecycle.EventSink
	logger   initorder.Logger
	config   configloader.Provider
}

// NewModule creates a new views module
func NewModule() *Module {
	return &Module{}
}

// Name returns the name of the module
func (m *Module) Name() string {
	return ModuleName
}

// Dependencies returns the names of modules this module depends on.
func (m *Module) Dependencies() []string {
	return []string{chimux.ModuleName, configloader.ModuleName, effects.ModuleName, router.ModuleName, store.ModuleName}
}

// Init registers the routes and mounts the handlers.
func (m *Module) Init(app initorder.Application) error {
	var (
		st        *store.Store
		rt        *router.Router
		registrar *effects.Registrar
		catalog   *effects.Catalog
		mux       chi.Router
	)
	if err := app.GetService(store.ServiceName, &st); err != nil {
		return fmt.Errorf("views requires %s: %w", store.ServiceName, err)
	}
	if err := app.GetService(router.ServiceName, &rt); err != nil {
		return fmt.Errorf("views requires %s: %w", router.ServiceName, err)
	}
	if err := app.GetService(effects.RegistrarServiceName, &registrar); err != nil {
		return fmt.Errorf("views requires %s: %w", effects.RegistrarServiceName, err)
	}
	if err := app.GetService(effects.CatalogServiceName, &catalog); err != nil {
		return fmt.Errorf("views requires %s: %w", effects.CatalogServiceName, err)
	}
	if err := app.GetService(chimux.RouterServiceName, &mux); err != nil {
		return fmt.Errorf("views requires %s: %w", chimux.RouterServiceName, err)
	}
	if err := app.GetService(configloader.ServiceName, &m.config); err != nil {
		return fmt.Errorf("views requires %s: %w", configloader.ServiceName, err)
	}
	m.sink = app.Milestones()
	m.logger = app.Logger()

	var history *lifecycle.MemoryStore
	if err := app.GetService(MilestonesServiceName, &history); err != nil {
		app.Logger().Debug("Milestone history not available", "error", err)
		history = nil
	}

	routes, err := Routes(catalog)
	if err != nil {
		return err
	}
	for _, route := range routes {
		if err := rt.Add(route); err != nil {
			return err
		}
	}

	m.handlers = &Handlers{
		Store:      st,
		Router:     rt,
		Registrar:  registrar,
		Milestones: history,
		Phase:      app.Phase,
		Logger:     app.Logger(),
	}
	m.handlers.Mount(mux)
	app.Logger().Info("Views mounted", "routes", len(routes))
	return nil
}

// Start constructs the application shell. Root effects are registered by
// then, since this module starts after the effects module.
func (m *Module) Start(ctx context.Context) error {
	m.shell = NewShell(m.handlers.Store, m.config, m.sink, m.logger)
	m.shell.OnInit(ctx)
	m.handlers.SetShell(m.shell)
	return nil
}

// Stop closes the shell's state subscription.
func (m *Module) Stop(context.Context) error {
	if m.shell != nil {
		m.shell.Close()
	}
	return nil
}

// Routes returns the application routes: "" and "/" redirect to "/home",
// "/user" and "/product" carry their route effects.
func Routes(catalog *effects.Catalog) ([]router.Route, error) {
	user, err := catalog.Lookup(effects.UserEffectsName)
	if err != nil {
		return nil, err
	}
	product, err := catalog.Lookup(effects.ProductEffectsName)
	if err != nil {
		return nil, err
	}

	return []router.Route{
		{Path: "", RedirectTo: "/home"},
		{Path: "/", RedirectTo: "/home"},
		{Path: "/home", Name: "home", View: NewHomeView},
		{Path: "/user", Name: "user", View: NewUserView, Effects: []effects.Factory{user}},
		{Path: "/product", Name: "product", View: NewProductView, Effects: []effects.Factory{product}},
	}, nil
}

// Handlers returns the HTTP handlers built in Init.
func (m *Module) Handlers() *Handlers {
	return m.handlers
}
