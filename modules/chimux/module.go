// Package chimux provides the HTTP routing module built on the Chi router.
//
// Provided services:
//   - "chimux.router": the module itself, as ChiRouterService
//   - "chi.router": the underlying chi.Router
//
// Other modules register their handlers during Init:
//
//	var r chi.Router
//	app.GetService("chi.router", &r)
//	r.Get("/state", handler)
package chimux

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/GoCodeAlone/initorder"
)

// ModuleName is the unique identifier for the chimux module.
const ModuleName = "chimux"

// ServiceName is the name of the primary service provided by this module.
const ServiceName = "chimux.router"

// RouterServiceName provides the chi.Router handlers mount on.
const RouterServiceName = "chi.router"

// ChiRouterService defines the interface for working with the Chi router
type ChiRouterService interface {
	// ChiRouter gives direct access to the router handlers mount on.
	ChiRouter() chi.Router
	// Handler returns the root handler to serve, including the base path.
	Handler() http.Handler
}

// ChiMuxModule provides HTTP routing functionality using the Chi router library.
//
// The module implements the following interfaces:
//   - initorder.Module: Basic module lifecycle
//   - initorder.Configurable: Configuration management
//   - initorder.ServiceAware: Service registration
//   - ChiRouterService: Direct Chi router access
type ChiMuxModule struct {
	config *ChiMuxConfig
	root   *chi.Mux
	router chi.Router
	logger initorder.Logger
}

var _ ChiRouterService = (*ChiMuxModule)(nil)

// NewChiMuxModule creates a new instance of the chimux module.
func NewChiMuxModule() *ChiMuxModule {
	return &ChiMuxModule{}
}

// Name returns the unique identifier for this module.
func (m *ChiMuxModule) Name() string {
	return ModuleName
}

// RegisterConfig registers the module's configuration structure.
func (m *ChiMuxModule) RegisterConfig(app initorder.Application) error {
	app.RegisterConfigSection(m.Name(), initorder.NewStdConfigProvider(&ChiMuxConfig{}))
	return nil
}

// Init sets up the chi router with the default middleware stack:
// RequestID, RealIP, request logging, Recoverer, Timeout and CORS.
func (m *ChiMuxModule) Init(app initorder.Application) error {
	m.logger = app.Logger()

	cfg, err := app.GetConfigSection(m.Name())
	if err != nil {
		return fmt.Errorf("failed to get config section '%s': %w", m.Name(), err)
	}
	m.config = cfg.GetConfig().(*ChiMuxConfig)

	m.root = chi.NewRouter()
	m.root.Use(middleware.RequestID)
	m.root.Use(middleware.RealIP)
	m.root.Use(m.requestLogger())
	m.root.Use(middleware.Recoverer)
	if m.config.Timeout > 0 {
		m.root.Use(middleware.Timeout(m.config.Timeout))
	}
	m.root.Use(m.corsMiddleware())

	if m.config.BasePath != "" && m.config.BasePath != "/" {
		sub := chi.NewRouter()
		m.root.Mount(m.config.BasePath, sub)
		m.router = sub
	} else {
		m.router = m.root
	}

	m.logger.Debug("Created chi router", "basePath", m.config.BasePath,
		"middleware", len(m.root.Middlewares()))
	return nil
}

// ProvidesServices declares services provided by this module.
func (m *ChiMuxModule) ProvidesServices() []initorder.ServiceProvider {
	return []initorder.ServiceProvider{
		{
			Name:        ServiceName,
			Description: "Chi router service for HTTP routing",
			Instance:    ChiRouterService(m),
		},
		{
			Name:        RouterServiceName,
			Description: "Chi router handlers mount on",
			Instance:    m.router,
		},
	}
}

// ChiRouter returns the router handlers mount on.
func (m *ChiMuxModule) ChiRouter() chi.Router {
	return m.router
}

// Handler returns the root handler.
func (m *ChiMuxModule) Handler() http.Handler {
	return m.root
}

// ServeHTTP implements http.Handler.
func (m *ChiMuxModule) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.root.ServeHTTP(w, r)
}

// Stop logs the registered route count.
func (m *ChiMuxModule) Stop(context.Context) error {
	m.logger.Info("Stopping chimux module", "routes", len(m.root.Routes()))
	return nil
}
