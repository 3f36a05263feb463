package chimux

import (
	"time"
)

// ChiMuxConfig holds the configuration for the chimux module.
//
// Example YAML configuration:
//
//	chimux:
//	  allowed_origins: ["*"]
//	  allowed_methods: [GET, POST, OPTIONS]
//	  timeout: 30s
//	  basepath: "/api"
//
// Example environment variables:
//
//	INITORDER_CHIMUX_ALLOWED_ORIGINS=https://example.com,https://app.example.com
//	INITORDER_CHIMUX_BASE_PATH=/api
type ChiMuxConfig struct {
	// AllowedOrigins specifies the list of allowed origins for CORS requests.
	// Use "*" to allow all origins.
	AllowedOrigins []string `yaml:"allowed_origins" toml:"allowed_origins" json:"allowed_origins" default:"*" desc:"List of allowed origins for CORS requests." env:"ALLOWED_ORIGINS"`

	// AllowedMethods specifies the list of allowed HTTP methods for CORS requests.
	AllowedMethods []string `yaml:"allowed_methods" toml:"allowed_methods" json:"allowed_methods" default:"GET,POST,OPTIONS" desc:"List of allowed HTTP methods." env:"ALLOWED_METHODS"`

	// AllowedHeaders specifies the list of allowed request headers for CORS requests.
	AllowedHeaders []string `yaml:"allowed_headers" toml:"allowed_headers" json:"allowed_headers" default:"Origin,Accept,Content-Type" desc:"List of allowed request headers." env:"ALLOWED_HEADERS"`

	// MaxAge specifies the maximum age for CORS preflight cache in seconds.
	MaxAge int `yaml:"max_age" toml:"max_age" json:"max_age" default:"300" desc:"Maximum age for CORS preflight cache in seconds." env:"MAX_AGE"`

	// Timeout bounds request processing.
	Timeout time.Duration `yaml:"timeout" toml:"timeout" json:"timeout" default:"30s" desc:"Default request timeout." env:"TIMEOUT"`

	// BasePath specifies a base path prefix for all routes registered through this module.
	// Example: "/api" would make a route "/state" accessible as "/api/state"
	BasePath string `yaml:"basepath" toml:"basepath" json:"basepath" desc:"A base path prefix for all routes registered through this module." env:"BASE_PATH"`
}

// Validate implements the initorder.ConfigValidator interface.
func (c *ChiMuxConfig) Validate() error {
	return nil
}
