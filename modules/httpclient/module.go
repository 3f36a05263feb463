// Package httpclient provides the HTTP client module. Its transport is the
// request interceptor: relative request URLs are rewritten against the API
// base URL from the loaded configuration, and every request and outcome is
// recorded as a milestone.
//
// The module depends on configloader, so it is constructed in phase 2 with
// the configuration already available.
package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/GoCodeAlone/initorder"
	"github.com/GoCodeAlone/initorder/lifecycle"
	"github.com/GoCodeAlone/initorder/modules/configloader"
)

// ModuleName is the name of this module
const ModuleName = "httpclient"

// ServiceName is the name of the *http.Client service provided by this module
const ServiceName = "httpclient"

// ClientServiceName is the name of the ClientService provided by this module
const ClientServiceName = "httpclient-service"

// HTTPClientModule implements the HTTP client module.
//
// The module implements the following interfaces:
//   - initorder.Module: Basic module lifecycle
//   - initorder.Configurable: Configuration management
//   - initorder.ServiceAware: Service registration
//   - initorder.DependencyAware: Ordering after configloader
//   - ClientService: HTTP client service interface
//
// The HTTP client is thread-safe and can be used concurrently from multiple goroutines.
type HTTPClientModule struct {
	config     *Config
	logger     initorder.Logger
	httpClient *http.Client
	transport  *http.Transport
	modifier   RequestModifierFunc

	// base replaces the network transport, used by tests.
	base http.RoundTripper
}

// Make sure HTTPClientModule implements necessary interfaces
var (
	_ initorder.Module = (*HTTPClientModule)(nil)
	_ ClientService    = (*HTTPClientModule)(nil)
)

// NewHTTPClientModule creates a new instance of the HTTP client module.
//
// Example:
//
//	app.RegisterModule(httpclient.NewHTTPClientModule())
func NewHTTPClientModule() *HTTPClientModule {
	return &HTTPClientModule{}
}

// WithBaseTransport sets the transport the interceptor delegates to instead
// of a network transport.
func (m *HTTPClientModule) WithBaseTransport(rt http.RoundTripper) *HTTPClientModule {
	m.base = rt
	return m
}

// Name returns the unique identifier for this module.
func (m *HTTPClientModule) Name() string {
	return ModuleName
}

// RegisterConfig registers the module's configuration structure.
func (m *HTTPClientModule) RegisterConfig(app initorder.Application) error {
	app.RegisterConfigSection(m.Name(), initorder.NewStdConfigProvider(&Config{}))
	return nil
}

// Dependencies returns the names of modules this module depends on.
func (m *HTTPClientModule) Dependencies() []string {
	return []string{configloader.ModuleName}
}

// Init constructs the interceptor and the client. The configuration visible
// at construction time is recorded, proving it was loaded first.
func (m *HTTPClientModule) Init(app initorder.Application) error {
	m.logger = app.Logger()
	m.logger.Info("Initializing HTTP client module")

	cfg, err := app.GetConfigSection(m.Name())
	if err != nil {
		return fmt.Errorf("failed to get config section '%s': %w", m.Name(), err)
	}
	m.config = cfg.GetConfig().(*Config)

	var provider configloader.Provider
	if err := app.GetService(configloader.ServiceName, &provider); err != nil {
		return fmt.Errorf("httpclient requires %s: %w", configloader.ServiceName, err)
	}

	milestone := lifecycle.NewEmitter(app.Milestones(), MilestoneSource)
	loaded, visible := provider.GetConfig()
	milestone.Emit(context.Background(), lifecycle.EventTypeInterceptorConstructed,
		"CONSTRUCTOR - ConfigInterceptor instantiated",
		"configVisible", visible, "apiUrl", loaded.APIURL)

	base := m.base
	if base == nil {
		m.transport = &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			MaxIdleConns:    m.config.MaxIdleConns,
			IdleConnTimeout: m.config.IdleConnTimeout,
		}
		base = m.transport
	}

	m.modifier = requestIDModifier(m.config.RequestIDHeader)
	m.httpClient = &http.Client{
		Transport: &configTransport{
			Transport: base,
			Config:    provider,
			Modifier:  m.modifier,
			Milestone: milestone,
			Logger:    m.logger,
		},
		Timeout: m.config.RequestTimeout,
	}
	return nil
}

// Stop closes idle connections.
func (m *HTTPClientModule) Stop(context.Context) error {
	m.logger.Info("Stopping HTTP client module")
	if m.transport != nil {
		m.transport.CloseIdleConnections()
	}
	return nil
}

// ProvidesServices returns services provided by this module.
func (m *HTTPClientModule) ProvidesServices() []initorder.ServiceProvider {
	return []initorder.ServiceProvider{
		{
			Name:        ServiceName,
			Description: "Intercepted HTTP client (*http.Client)",
			Instance:    m.httpClient,
		},
		{
			Name:        ClientServiceName,
			Description: "HTTP client service interface (ClientService)",
			Instance:    ClientService(m),
		},
	}
}

// Client returns the configured http.Client instance.
func (m *HTTPClientModule) Client() *http.Client {
	return m.httpClient
}

// RequestModifier returns the modifier applied to every request.
func (m *HTTPClientModule) RequestModifier() RequestModifierFunc {
	return m.modifier
}

// WithTimeout creates a new client with the specified timeout.
func (m *HTTPClientModule) WithTimeout(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		return m.httpClient
	}
	return &http.Client{
		Transport: m.httpClient.Transport,
		Timeout:   timeout,
	}
}
