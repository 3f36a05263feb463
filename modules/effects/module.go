package effects

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/GoCodeAlone/initorder"
	"github.com/GoCodeAlone/initorder/lifecycle"
	"github.com/GoCodeAlone/initorder/modules/configloader"
	"github.com/GoCodeAlone/initorder/modules/httpclient"
	"github.com/GoCodeAlone/initorder/modules/store"
)

const (
	// ModuleName is the name of this module
	ModuleName = "effects"
	// RegistrarServiceName provides the *Registrar
	RegistrarServiceName = "effects.registrar"
	// CatalogServiceName provides the *Catalog
	CatalogServiceName = "effects.catalog"
	// MilestoneSource tags module-level milestones.
	MilestoneSource = "EFFECTS"
	// RootScope is the scope label of effects registered at startup.
	RootScope = "root"
)

// Module builds the registrar in Init and registers root effects in Start.
type Module struct {
	config    *Config
	catalog   *Catalog
	registrar *Registrar
	roots     []*Registration
	logger    initorder.Logger
	milestone *lifecycle.Emitter
}

// NewModule creates a new effects module
func NewModule() *Module {
	return &Module{}
}

// Name returns the name of the module
func (m *Module) Name() string {
	return ModuleName
}

// RegisterConfig registers the effects config section
func (m *Module) RegisterConfig(app initorder.Application) error {
	app.RegisterConfigSection(ModuleName, initorder.NewStdConfigProvider(&Config{}))
	return nil
}

// Dependencies returns the names of modules this module depends on.
func (m *Module) Dependencies() []string {
	return []string{configloader.ModuleName, httpclient.ModuleName, store.ModuleName}
}

// Init builds the catalog and the registrar.
func (m *Module) Init(app initorder.Application) error {
	m.logger = app.Logger()
	m.milestone = lifecycle.NewEmitter(app.Milestones(), MilestoneSource)

	cfg, err := app.GetConfigSection(ModuleName)
	if err != nil {
		return fmt.Errorf("failed to get config section '%s': %w", ModuleName, err)
	}
	m.config = cfg.GetConfig().(*Config)

	var (
		st       *store.Store
		provider configloader.Provider
		client   *http.Client
	)
	if err := app.GetService(store.ServiceName, &st); err != nil {
		return fmt.Errorf("effects requires %s: %w", store.ServiceName, err)
	}
	if err := app.GetService(configloader.ServiceName, &provider); err != nil {
		return fmt.Errorf("effects requires %s: %w", configloader.ServiceName, err)
	}
	if err := app.GetService(httpclient.ServiceName, &client); err != nil {
		return fmt.Errorf("effects requires %s: %w", httpclient.ServiceName, err)
	}

	m.catalog = NewCatalog(
		NewAppEffectsFactory(m.config.LoadDataDelay),
		NewUserEffectsFactory(),
		NewProductEffectsFactory(),
	)
	for _, name := range m.config.RootEffects {
		if _, err := m.catalog.Lookup(name); err != nil {
			return err
		}
	}

	m.registrar = NewRegistrar(app.Ready(), st, provider, client, app.Milestones(), m.logger)
	m.milestone.Emit(context.Background(), lifecycle.EventTypeEffectsProvided,
		"Root effects provided", "effects", slices.Clone(m.config.RootEffects))
	return nil
}

// Start registers root effects.
func (m *Module) Start(ctx context.Context) error {
	for _, name := range m.config.RootEffects {
		f, err := m.catalog.Lookup(name)
		if err != nil {
			return err
		}
		reg, err := m.registrar.Register(ctx, RootScope, f)
		if err != nil {
			return err
		}
		m.roots = append(m.roots, reg)
	}
	m.logger.Info("Root effects registered", "count", len(m.roots))
	return nil
}

// Stop disposes root effects, newest first.
func (m *Module) Stop(context.Context) error {
	var lastErr error
	for i := len(m.roots) - 1; i >= 0; i-- {
		if err := m.roots[i].Dispose(); err != nil {
			lastErr = err
		}
	}
	m.roots = nil
	return lastErr
}

// ProvidesServices returns the registrar and the catalog.
func (m *Module) ProvidesServices() []initorder.ServiceProvider {
	return []initorder.ServiceProvider{
		{
			Name:        RegistrarServiceName,
			Description: "Effect registrar gated on the ready barrier",
			Instance:    m.registrar,
		},
		{
			Name:        CatalogServiceName,
			Description: "Effects factories by name",
			Instance:    m.catalog,
		},
	}
}

// Registrar returns the registrar built in Init.
func (m *Module) Registrar() *Registrar {
	return m.registrar
}
