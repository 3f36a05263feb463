// Package httpserver provides the HTTP server module. It serves the handler
// provided by the chimux module.
package httpserver

import (
	"fmt"
	"time"
)

// HTTPServerConfig defines the configuration for the HTTP server module.
type HTTPServerConfig struct {
	// Host is the hostname or IP address to bind to.
	Host string `yaml:"host" toml:"host" json:"host" env:"HOST" default:"127.0.0.1" desc:"Address to bind to"`

	// Port is the port number to listen on. 0 picks a free port.
	Port int `yaml:"port" toml:"port" json:"port" env:"PORT" default:"8080" desc:"Port to listen on"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	ReadTimeout time.Duration `yaml:"read_timeout" toml:"read_timeout" json:"read_timeout" env:"READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration `yaml:"write_timeout" toml:"write_timeout" json:"write_timeout" env:"WRITE_TIMEOUT" default:"15s"`

	// IdleTimeout is the maximum amount of time to wait for the next request.
	IdleTimeout time.Duration `yaml:"idle_timeout" toml:"idle_timeout" json:"idle_timeout" env:"IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum amount of time to wait during graceful
	// shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout" json:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// Validate checks if the configuration is valid.
func (c *HTTPServerConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Port)
	}
	return nil
}
