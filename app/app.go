// Package app is the composition root. It wires every module into one
// initorder application, attaches the milestone history, and performs the
// initial navigation once the application reports Ready.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/GoCodeAlone/initorder"
	"github.com/GoCodeAlone/initorder/lifecycle"
	"github.com/GoCodeAlone/initorder/modules/chimux"
	"github.com/GoCodeAlone/initorder/modules/configloader"
	"github.com/GoCodeAlone/initorder/modules/effects"
	"github.com/GoCodeAlone/initorder/modules/httpclient"
	"github.com/GoCodeAlone/initorder/modules/httpserver"
	"github.com/GoCodeAlone/initorder/modules/router"
	"github.com/GoCodeAlone/initorder/modules/store"
	"github.com/GoCodeAlone/initorder/modules/views"
)

// ErrServerDisabled is returned by Addr when the app was built without Serve.
var ErrServerDisabled = errors.New("http server not enabled")

// Options configures New.
type Options struct {
	// Logger is required.
	Logger initorder.Logger

	// Feeders replace the default environment feeder when non-nil.
	Feeders []initorder.Feeder

	// Observers receive every milestone after the built-in history.
	Observers []lifecycle.EventObserver

	// CloudEventObservers receive milestones converted to CloudEvents.
	CloudEventObservers []initorder.ObserverFunc

	// Serve adds the HTTP server module.
	Serve bool

	// ConsoleMilestones writes every milestone through Logger.
	ConsoleMilestones bool

	// Transport is the base transport under the request interceptor.
	Transport http.RoundTripper
}

// App is a wired application.
type App struct {
	app     *initorder.StdApplication
	history *lifecycle.MemoryStore
	logger  initorder.Logger

	store   *store.Module
	effects *effects.Module
	router  *router.Module
	views   *views.Module
	mux     *chimux.ChiMuxModule
	server  *httpserver.HTTPServerModule
}

// New builds the application. Nothing runs until Boot.
func New(opts Options) (*App, error) {
	a := &App{
		history: lifecycle.NewMemoryStore(),
		logger:  opts.Logger,
		store:   store.NewModule(),
		effects: effects.NewModule(),
		router:  router.NewModule(),
		views:   views.NewModule(),
		mux:     chimux.NewChiMuxModule(),
	}

	client := httpclient.NewHTTPClientModule()
	if opts.Transport != nil {
		client = client.WithBaseTransport(opts.Transport)
	}

	modules := []initorder.Module{
		configloader.NewModule(),
		a.store,
		client,
		a.effects,
		a.router,
		a.mux,
		a.views,
	}
	if opts.Serve {
		a.server = httpserver.NewHTTPServerModule()
		modules = append(modules, a.server)
	}

	observers := []lifecycle.EventObserver{a.history}
	if opts.ConsoleMilestones && opts.Logger != nil {
		observers = append(observers, lifecycle.NewLoggerObserver(opts.Logger))
	}
	observers = append(observers, opts.Observers...)

	builderOpts := []initorder.Option{
		initorder.WithLogger(opts.Logger),
		initorder.WithMilestoneObservers(observers...),
		initorder.WithModules(modules...),
	}
	if opts.Feeders != nil {
		builderOpts = append(builderOpts, initorder.WithConfigFeeders(opts.Feeders...))
	}
	if len(opts.CloudEventObservers) > 0 {
		builderOpts = append(builderOpts, initorder.WithObserver(opts.CloudEventObservers...))
	}

	std, err := initorder.NewApplication(builderOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build application: %w", err)
	}
	if err := std.RegisterService(views.MilestonesServiceName, a.history); err != nil {
		return nil, fmt.Errorf("failed to register milestone history: %w", err)
	}
	a.app = std
	return a, nil
}

// Boot runs both startup phases, starts every module, then activates the
// configured initial route. ctx bounds phase 1 and the navigation.
func (a *App) Boot(ctx context.Context) error {
	if err := a.app.InitWithContext(ctx); err != nil {
		return err
	}
	if err := a.app.Start(); err != nil {
		return err
	}

	initial := a.router.InitialRoute()
	if _, err := a.router.Router().Navigate(ctx, initial); err != nil {
		return fmt.Errorf("initial navigation to %q: %w", initial, err)
	}
	a.logger.Info("Application ready", "route", initial, "phase", string(a.app.Phase()))
	return nil
}

// Run boots the application and blocks until ctx is done, then stops it.
func (a *App) Run(ctx context.Context) error {
	if err := a.Boot(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	a.logger.Info("Context done, shutting down")
	return a.Shutdown()
}

// Shutdown stops every module in reverse dependency order.
func (a *App) Shutdown() error {
	return a.app.Stop()
}

// Application returns the underlying module application.
func (a *App) Application() *initorder.StdApplication { return a.app }

// History returns every milestone recorded so far.
func (a *App) History() *lifecycle.MemoryStore { return a.history }

// Store returns the state container.
func (a *App) Store() *store.Store { return a.store.Store() }

// Registrar returns the effect registrar. Nil before Init.
func (a *App) Registrar() *effects.Registrar { return a.effects.Registrar() }

// Router returns the router. Nil before Init.
func (a *App) Router() *router.Router { return a.router.Router() }

// Handlers returns the view handlers. Nil before Init.
func (a *App) Handlers() *views.Handlers { return a.views.Handlers() }

// Handler returns the HTTP handler serving the views.
func (a *App) Handler() http.Handler { return a.mux.Handler() }

// Addr returns the bound server address.
func (a *App) Addr() (string, error) {
	if a.server == nil {
		return "", ErrServerDisabled
	}
	return a.server.Addr()
}
