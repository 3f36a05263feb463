package httpclient

import (
	"errors"
	"time"
)

// ErrInvalidTimeout is returned by Validate for a non-positive request timeout.
var ErrInvalidTimeout = errors.New("request_timeout must be positive")

// Config defines the configuration for the HTTP client module.
//
// Example YAML configuration:
//
//	httpclient:
//	  request_timeout: 5s
//	  max_idle_conns: 100
//	  idle_conn_timeout: 90s
//
// Example environment variables:
//
//	INITORDER_HTTPCLIENT_REQUEST_TIMEOUT=10s
type Config struct {
	// RequestTimeout bounds every request made through the client.
	RequestTimeout time.Duration `yaml:"request_timeout" toml:"request_timeout" json:"request_timeout" env:"REQUEST_TIMEOUT" default:"5s" desc:"Timeout for outgoing requests"`

	// MaxIdleConns controls the maximum number of idle (keep-alive) connections across all hosts.
	MaxIdleConns int `yaml:"max_idle_conns" toml:"max_idle_conns" json:"max_idle_conns" env:"MAX_IDLE_CONNS" default:"100" desc:"Maximum idle connections"`

	// IdleConnTimeout is how long an idle connection stays open.
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout" toml:"idle_conn_timeout" json:"idle_conn_timeout" env:"IDLE_CONN_TIMEOUT" default:"90s" desc:"Idle connection lifetime"`

	// RequestIDHeader names the header the default request modifier sets.
	// Empty disables it.
	RequestIDHeader string `yaml:"request_id_header" toml:"request_id_header" json:"request_id_header" env:"REQUEST_ID_HEADER" default:"X-Request-ID" desc:"Header carrying a generated request id"`
}

// Validate implements initorder.ConfigValidator.
func (c *Config) Validate() error {
	if c.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}
