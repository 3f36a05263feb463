// Package initorder provides a small modular application framework with an
// explicit two-phase startup protocol.
//
// Phase 1 runs every registered Initializer concurrently and blocks until all
// of them have resolved their asynchronous prerequisite data. Only then is the
// application's ReadyBarrier fired and phase 2 begins: modules are initialized
// and started in dependency order. No module Init or Start method is ever
// called before the barrier fires.
//
// Every lifecycle milestone is recorded through a lifecycle.EventSink so that
// the relative ordering of initialization steps can be observed and asserted.
//
// Basic usage:
//
//	app := initorder.NewStdApplication(configProvider, logger)
//	app.RegisterModule(configloader.NewModule())
//	app.RegisterModule(store.NewModule())
//	if err := app.Run(); err != nil {
//		log.Fatal(err)
//	}
package initorder

import "context"

// Module represents a registrable component in the application.
// All modules must implement this interface to be managed by the application.
type Module interface {
	// Name returns the unique identifier for this module.
	// The name is used for dependency resolution and service registration.
	Name() string

	// Init initializes the module with the application context.
	// Init is called during phase 2, after every Initializer has completed,
	// in dependency order.
	Init(app Application) error
}

// Configurable is an interface for modules that can have configuration.
// RegisterConfig is called before any feeder runs and before phase 1, so an
// Initializer can rely on its own section being populated.
type Configurable interface {
	// RegisterConfig registers configuration requirements with the application.
	//
	// Example:
	//   func (m *MyModule) RegisterConfig(app Application) error {
	//       app.RegisterConfigSection(m.Name(), initorder.NewStdConfigProvider(&MyConfig{}))
	//       return nil
	//   }
	RegisterConfig(app Application) error
}

// Initializer is implemented by modules that must resolve asynchronous
// prerequisite data before the rest of the application is wired.
//
// All initializers run concurrently during phase 1. The application does not
// initialize any module until every Initialize call has returned without
// error. A module that implements Initializer still has its Init method
// called in phase 2 like every other module.
type Initializer interface {
	Module

	// Initialize performs the blocking prerequisite work. The context is
	// cancelled when the application gives up on startup.
	Initialize(ctx context.Context, app Application) error
}

// DependencyAware is an interface for modules that depend on other modules.
// Dependencies are initialized and started before this module, and stopped
// after it. Circular dependencies cause initialization to fail.
type DependencyAware interface {
	// Dependencies returns names of other modules this module depends on.
	//
	// Example:
	//   func (m *EffectsModule) Dependencies() []string {
	//       return []string{"configloader", "store"}
	//   }
	Dependencies() []string
}

// ServiceAware is an interface for modules that provide services to others.
// Provided services are registered right after the module's Init returns.
type ServiceAware interface {
	// ProvidesServices returns a list of services provided by this module.
	ProvidesServices() []ServiceProvider
}

// Startable is an interface for modules that need to perform startup operations.
// Start is called in dependency order after all modules have been initialized.
type Startable interface {
	// Start begins the module's runtime operations. The context is the
	// application's lifecycle context and is cancelled on Stop.
	Start(ctx context.Context) error
}

// Stoppable is an interface for modules that need to perform cleanup operations.
// Stop is called in reverse dependency order.
type Stoppable interface {
	// Stop performs graceful shutdown of the module. The context carries the
	// shutdown timeout.
	Stop(ctx context.Context) error
}

// ModuleRegistry represents a registry of modules keyed by their names.
type ModuleRegistry map[string]Module
