package effects

import (
	"errors"
	"time"
)

// ErrInvalidDelay is returned by Validate for a negative load delay.
var ErrInvalidDelay = errors.New("load_data_delay must not be negative")

// Config for the effects module.
type Config struct {
	LoadDataDelay time.Duration `yaml:"load_data_delay" toml:"load_data_delay" json:"load_data_delay" env:"LOAD_DATA_DELAY" default:"500ms" desc:"Delay between LoadData and LoadDataSuccess"`
	RootEffects   []string      `yaml:"root_effects" toml:"root_effects" json:"root_effects" env:"ROOT_EFFECTS" default:"AppEffects" desc:"Effects registered at startup"`
}

// Validate implements initorder.ConfigValidator.
func (c *Config) Validate() error {
	if c.LoadDataDelay < 0 {
		return ErrInvalidDelay
	}
	return nil
}
