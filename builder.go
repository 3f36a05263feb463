package initorder

import (
	"fmt"

	"github.com/GoCodeAlone/initorder/lifecycle"
)

// Option represents a functional option for configuring applications
type Option func(*ApplicationBuilder) error

// ApplicationBuilder helps construct applications step by step
type ApplicationBuilder struct {
	logger             Logger
	configProvider     ConfigProvider
	configFeeders      []Feeder
	modules            []Module
	observers          []ObserverFunc
	milestoneObservers []lifecycle.EventObserver
}

// NewApplication creates a new application with the provided options.
func NewApplication(opts ...Option) (*StdApplication, error) {
	builder := &ApplicationBuilder{}
	for _, opt := range opts {
		if err := opt(builder); err != nil {
			return nil, err
		}
	}
	return builder.Build()
}

// Build constructs the application, registering observers and modules.
func (b *ApplicationBuilder) Build() (*StdApplication, error) {
	if b.logger == nil {
		return nil, ErrLoggerNotSet
	}
	if b.configProvider == nil {
		b.configProvider = NewStdConfigProvider(&AppConfig{})
	}

	app := NewStdApplication(b.configProvider, b.logger)
	if b.configFeeders != nil {
		app.SetConfigFeeders(b.configFeeders)
	}

	for _, observer := range b.milestoneObservers {
		if err := app.RegisterMilestoneObserver(observer); err != nil {
			return nil, fmt.Errorf("failed to register milestone observer %s: %w", observer.ID(), err)
		}
	}

	for i, fn := range b.observers {
		observer := NewFunctionalObserver(fmt.Sprintf("observer-%d", i), fn)
		if err := app.RegisterObserver(observer); err != nil {
			return nil, fmt.Errorf("failed to register observer: %w", err)
		}
	}

	for _, module := range b.modules {
		app.RegisterModule(module)
	}

	return app, nil
}

// WithLogger sets the logger for the application
func WithLogger(logger Logger) Option {
	return func(b *ApplicationBuilder) error {
		b.logger = logger
		return nil
	}
}

// WithConfigProvider sets the configuration provider
func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *ApplicationBuilder) error {
		b.configProvider = provider
		return nil
	}
}

// WithConfigFeeders replaces the default environment-only feeders.
func WithConfigFeeders(feeders ...Feeder) Option {
	return func(b *ApplicationBuilder) error {
		b.configFeeders = append(b.configFeeders, feeders...)
		return nil
	}
}

// WithModules adds modules to the application
func WithModules(modules ...Module) Option {
	return func(b *ApplicationBuilder) error {
		b.modules = append(b.modules, modules...)
		return nil
	}
}

// WithObserver adds CloudEvents observer functions
func WithObserver(observers ...ObserverFunc) Option {
	return func(b *ApplicationBuilder) error {
		b.observers = append(b.observers, observers...)
		return nil
	}
}

// WithMilestoneObservers attaches observers to the milestone stream before
// any module runs, so they see the very first milestone.
func WithMilestoneObservers(observers ...lifecycle.EventObserver) Option {
	return func(b *ApplicationBuilder) error {
		for _, o := range observers {
			if o == nil {
				return lifecycle.ErrObserverNil
			}
		}
		b.milestoneObservers = append(b.milestoneObservers, observers...)
		return nil
	}
}
