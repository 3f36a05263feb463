package initorder

import (
	"fmt"
	"sort"
)

// appConfigSection is the key the application's own config is fed under.
const appConfigSection = "app"

// ConfigProvider defines the interface for providing configuration objects
type ConfigProvider interface {
	// GetConfig returns the configuration object
	GetConfig() any
}

// StdConfigProvider provides a standard implementation of ConfigProvider
type StdConfigProvider struct {
	cfg any
}

// GetConfig returns the configuration object
func (s *StdConfigProvider) GetConfig() any {
	return s.cfg
}

// NewStdConfigProvider creates a new standard configuration provider
func NewStdConfigProvider(cfg any) *StdConfigProvider {
	return &StdConfigProvider{cfg: cfg}
}

// AppConfig is the application-level config section.
type AppConfig struct {
	Name string `yaml:"name" toml:"name" json:"name" env:"NAME" default:"initorder" desc:"Application name used as the CloudEvents source"`
}

// loadAppConfig fills the application config and every registered section:
// defaults first, then each feeder in order, then validation.
func loadAppConfig(app *StdApplication) error {
	if app.cfgProvider == nil {
		return ErrConfigProviderNil
	}

	sections := map[string]ConfigProvider{appConfigSection: app.cfgProvider}
	for name, cp := range app.cfgSections {
		sections[name] = cp
	}

	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cfg := sections[name].GetConfig()
		if cfg == nil {
			return fmt.Errorf("%w: section %s", ErrConfigNil, name)
		}

		if err := ProcessConfigDefaults(cfg); err != nil {
			return fmt.Errorf("section %s: %w", name, err)
		}
		for _, feeder := range app.configFeeders {
			if err := feeder.FeedKey(name, cfg); err != nil {
				return fmt.Errorf("%w: section %s: %w", ErrConfigFeederError, name, err)
			}
		}
		if err := ValidateConfig(cfg); err != nil {
			return fmt.Errorf("section %s: %w", name, err)
		}
		app.logger.Debug("Loaded config section", "section", name, "type", fmt.Sprintf("%T", cfg))
	}
	return nil
}
