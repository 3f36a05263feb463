package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/GoCodeAlone/initorder"
	"github.com/GoCodeAlone/initorder/modules/chimux"
)

// ModuleName is the name of this module
const ModuleName = "httpserver"

// HTTPServerModule serves the chimux handler.
//
// The module implements the following interfaces:
//   - initorder.Module: Basic module lifecycle
//   - initorder.Configurable: Configuration management
//   - initorder.DependencyAware: Ordering after chimux
//   - initorder.Startable: Listening
//   - initorder.Stoppable: Graceful shutdown
type HTTPServerModule struct {
	config   *HTTPServerConfig
	server   *http.Server
	listener net.Listener
	logger   initorder.Logger
	handler  http.Handler
	errCh    chan error
}

// NewHTTPServerModule creates a new instance of the HTTP server module.
func NewHTTPServerModule() *HTTPServerModule {
	return &HTTPServerModule{}
}

// Name returns the name of the module.
func (m *HTTPServerModule) Name() string {
	return ModuleName
}

// RegisterConfig registers the module's configuration structure.
func (m *HTTPServerModule) RegisterConfig(app initorder.Application) error {
	app.RegisterConfigSection(m.Name(), initorder.NewStdConfigProvider(&HTTPServerConfig{}))
	return nil
}

// Dependencies returns the names of modules this module depends on.
func (m *HTTPServerModule) Dependencies() []string {
	return []string{chimux.ModuleName}
}

// Init resolves the handler from the chimux service.
func (m *HTTPServerModule) Init(app initorder.Application) error {
	m.logger = app.Logger()

	cfg, err := app.GetConfigSection(m.Name())
	if err != nil {
		return fmt.Errorf("failed to get config section '%s': %w", m.Name(), err)
	}
	m.config = cfg.GetConfig().(*HTTPServerConfig)

	var svc chimux.ChiRouterService
	if err := app.GetService(chimux.ServiceName, &svc); err != nil {
		return fmt.Errorf("%w: %w", ErrNoHandler, err)
	}
	m.handler = svc.Handler()
	return nil
}

// Start binds the listener, so the server accepts connections as soon as
// Start returns, then serves in the background.
func (m *HTTPServerModule) Start(ctx context.Context) error {
	if m.handler == nil {
		return ErrNoHandler
	}

	addr := net.JoinHostPort(m.config.Host, strconv.Itoa(m.config.Port))
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	m.listener = listener

	m.server = &http.Server{
		Handler:      m.handler,
		ReadTimeout:  m.config.ReadTimeout,
		WriteTimeout: m.config.WriteTimeout,
		IdleTimeout:  m.config.IdleTimeout,
	}

	m.errCh = make(chan error, 1)
	go func() {
		err := m.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("HTTP server error", "error", err)
			m.errCh <- err
		}
		close(m.errCh)
	}()

	m.logger.Info("HTTP server started", "address", listener.Addr().String())
	return nil
}

// Stop shuts the server down gracefully.
func (m *HTTPServerModule) Stop(ctx context.Context) error {
	if m.server == nil {
		return nil
	}
	m.logger.Info("Stopping HTTP server", "timeout", m.config.ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(ctx, m.config.ShutdownTimeout)
	defer cancel()
	if err := m.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}
	return <-m.errCh
}

// Addr returns the address the server listens on.
func (m *HTTPServerModule) Addr() (string, error) {
	if m.listener == nil {
		return "", ErrServerNotStarted
	}
	return m.listener.Addr().String(), nil
}
