package configloader

import (
	"errors"
	"time"
)

// ErrInvalidFetchDelay is returned by Validate for a negative delay.
var ErrInvalidFetchDelay = errors.New("fetchDelay must not be negative")

// LoaderConfig holds the values the simulated fetch returns, and how long the
// fetch takes.
type LoaderConfig struct {
	APIURL      string        `yaml:"apiUrl" toml:"apiUrl" json:"apiUrl" env:"API_URL" default:"https://api.example.com" required:"true" desc:"Base URL prepended to relative outgoing requests"`
	Environment string        `yaml:"environment" toml:"environment" json:"environment" env:"ENVIRONMENT" default:"development" desc:"Environment name reported by the loaded configuration"`
	FetchDelay  time.Duration `yaml:"fetchDelay" toml:"fetchDelay" json:"fetchDelay" env:"FETCH_DELAY" default:"1s" desc:"Simulated latency of the configuration fetch"`
}

// Validate implements initorder.ConfigValidator.
func (c *LoaderConfig) Validate() error {
	if c.FetchDelay < 0 {
		return ErrInvalidFetchDelay
	}
	return nil
}
