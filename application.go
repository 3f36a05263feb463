package initorder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"sort"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/GoCodeAlone/initorder/lifecycle"
)

// milestoneSource tags milestones recorded by the application itself.
const milestoneSource = "APP"

// stopTimeout bounds the whole of Stop.
const stopTimeout = 30 * time.Second

// Application is what modules see of the application during RegisterConfig,
// Initialize and Init.
type Application interface {
	ConfigProvider() ConfigProvider
	SvcRegistry() ServiceRegistry
	RegisterModule(module Module)

	// RegisterConfigSection registers a module's config section. Sections
	// are filled by the feeders before any Initializer runs.
	RegisterConfigSection(section string, cp ConfigProvider)
	ConfigSections() map[string]ConfigProvider
	GetConfigSection(section string) (ConfigProvider, error)

	RegisterService(name string, service any) error
	// GetService assigns the named service to target, which must be a
	// pointer to the service's type or to an interface it implements.
	GetService(name string, target any) error

	Init() error
	InitWithContext(ctx context.Context) error
	Start() error
	Stop() error
	Run() error
	RunWithContext(ctx context.Context) error
	Logger() Logger

	// Milestones is the sink every component records lifecycle milestones to.
	Milestones() lifecycle.EventSink
	// Phase returns the current global startup phase.
	Phase() Phase
	// Ready returns the barrier fired at the end of phase 1.
	Ready() *ReadyBarrier
}

// StdApplication represents the core StdApplication container
type StdApplication struct {
	cfgProvider    ConfigProvider
	cfgSections    map[string]ConfigProvider
	svcRegistry    ServiceRegistry
	moduleRegistry ModuleRegistry
	configFeeders  []Feeder
	logger         Logger
	ctx            context.Context
	cancel         context.CancelFunc

	dispatcher *lifecycle.Dispatcher
	milestones lifecycle.EventSink
	phases     *phaseTracker
	ready      *ReadyBarrier

	stateMu     sync.Mutex
	initialized bool
	order       []string

	observers   map[string]*observerRegistration
	observerMu  sync.RWMutex
	observerSeq uint64
	bridgeOnce  sync.Once
}

// NewStdApplication creates a new application instance. A nil config
// provider gets an AppConfig; a nil logger discards output.
func NewStdApplication(cp ConfigProvider, logger Logger) *StdApplication {
	if cp == nil {
		cp = NewStdConfigProvider(&AppConfig{})
	}
	if logger == nil {
		logger = nopLogger{}
	}

	app := &StdApplication{
		cfgProvider:    cp,
		cfgSections:    make(map[string]ConfigProvider),
		svcRegistry:    make(ServiceRegistry),
		moduleRegistry: make(ModuleRegistry),
		configFeeders:  DefaultConfigFeeders(),
		logger:         logger,
		dispatcher:     lifecycle.NewDispatcher(),
		phases:         newPhaseTracker(),
		ready:          NewReadyBarrier(),
		observers:      make(map[string]*observerRegistration),
	}
	app.milestones = phaseSink{next: app.dispatcher, phase: app.phases.get}
	app.dispatcher.OnObserverError(func(id string, event *lifecycle.Event, err error) {
		logger.Warn("Milestone observer failed", "observer", id, "event", string(event.Type), "error", err)
	})
	return app
}

// ConfigProvider retrieves the application config provider
func (app *StdApplication) ConfigProvider() ConfigProvider {
	return app.cfgProvider
}

// SvcRegistry retrieves the service svcRegistry
func (app *StdApplication) SvcRegistry() ServiceRegistry {
	return app.svcRegistry
}

// RegisterModule adds a module to the application. A module registered
// under an existing name replaces it.
func (app *StdApplication) RegisterModule(module Module) {
	app.stateMu.Lock()
	defer app.stateMu.Unlock()
	app.moduleRegistry[module.Name()] = module
	app.order = nil
}

// RegisterConfigSection registers a configuration section with the application
func (app *StdApplication) RegisterConfigSection(section string, cp ConfigProvider) {
	app.cfgSections[section] = cp
}

// ConfigSections retrieves all registered configuration sections
func (app *StdApplication) ConfigSections() map[string]ConfigProvider {
	return app.cfgSections
}

// GetConfigSection retrieves a configuration section
func (app *StdApplication) GetConfigSection(section string) (ConfigProvider, error) {
	cp, exists := app.cfgSections[section]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrConfigSectionNotFound, section)
	}
	return cp, nil
}

// SetConfigFeeders replaces the feeders used to load config sections.
func (app *StdApplication) SetConfigFeeders(feeders []Feeder) {
	app.configFeeders = feeders
}

// RegisterService adds a service with type checking
func (app *StdApplication) RegisterService(name string, service any) error {
	if _, exists := app.svcRegistry[name]; exists {
		return fmt.Errorf("%w: %s", ErrServiceAlreadyRegistered, name)
	}

	app.svcRegistry[name] = service
	app.logger.Debug("Registered service", "name", name, "type", fmt.Sprintf("%T", service))
	return nil
}

// GetService retrieves a service with type assertion
func (app *StdApplication) GetService(name string, target any) error {
	service, exists := app.svcRegistry[name]
	if !exists {
		return fmt.Errorf("%w: %s", ErrServiceNotFound, name)
	}
	return assignService(name, service, target)
}

// Logger represents a logger
func (app *StdApplication) Logger() Logger {
	return app.logger
}

// Milestones returns the milestone sink. Events recorded here are stamped
// with the current phase and fanned out to every milestone observer.
func (app *StdApplication) Milestones() lifecycle.EventSink {
	return app.milestones
}

// RegisterMilestoneObserver attaches an observer to the milestone stream.
func (app *StdApplication) RegisterMilestoneObserver(observer lifecycle.EventObserver) error {
	return app.dispatcher.RegisterObserver(observer)
}

// MilestoneMetrics reports what the milestone dispatcher has seen.
func (app *StdApplication) MilestoneMetrics() lifecycle.EventMetrics {
	return app.dispatcher.Metrics()
}

// Phase returns the current global startup phase.
func (app *StdApplication) Phase() Phase {
	return app.phases.get()
}

// PhaseHistory returns every phase the application has been in, in order.
func (app *StdApplication) PhaseHistory() []Phase {
	return app.phases.snapshot()
}

// Ready returns the barrier fired at the end of phase 1.
func (app *StdApplication) Ready() *ReadyBarrier {
	return app.ready
}

// Init runs both startup phases with a background context.
func (app *StdApplication) Init() error {
	return app.InitWithContext(context.Background())
}

// InitWithContext runs the two-phase startup:
//
//  1. Config sections are registered and loaded, then every Initializer runs
//     concurrently. When all succeed the ReadyBarrier fires.
//  2. Modules are initialized in dependency order and their services
//     registered.
//
// ctx bounds phase 1; cancelling it aborts the initializers.
func (app *StdApplication) InitWithContext(ctx context.Context) error {
	app.stateMu.Lock()
	if app.initialized {
		app.stateMu.Unlock()
		return ErrAlreadyInitialized
	}
	app.initialized = true
	app.stateMu.Unlock()

	for _, name := range app.moduleNames() {
		configurableModule, ok := app.moduleRegistry[name].(Configurable)
		if !ok {
			app.logger.Debug("Module does not implement Configurable, skipping", "module", name)
			continue
		}
		if err := configurableModule.RegisterConfig(app); err != nil {
			return fmt.Errorf("failed to register config for module %s: %w", name, err)
		}
	}

	order, err := app.moduleOrder()
	if err != nil {
		return fmt.Errorf("failed to resolve dependencies: %w", err)
	}

	if err := loadAppConfig(app); err != nil {
		return fmt.Errorf("failed to load app config: %w", err)
	}

	if err := app.runInitializers(ctx); err != nil {
		return err
	}

	for _, name := range order {
		if err := app.initModule(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// initModule runs one module's Init and registers the services it provides.
func (app *StdApplication) initModule(ctx context.Context, name string) error {
	module := app.moduleRegistry[name]
	if err := module.Init(app); err != nil {
		return fmt.Errorf("failed to initialize module '%s': %w", name, err)
	}

	if svcAware, ok := module.(ServiceAware); ok {
		for _, svc := range svcAware.ProvidesServices() {
			if err := app.RegisterService(svc.Name, svc.Instance); err != nil {
				return fmt.Errorf("module '%s' failed to register service: %w", name, err)
			}
		}
	}

	app.logger.Info("Initialized module", "module", name, "type", fmt.Sprintf("%T", module))
	app.emit(ctx, lifecycle.EventTypeModuleInitialized, "Module initialized", "module", name)
	return nil
}

// runInitializers is phase 1. The barrier fires only if every initializer
// returned nil.
func (app *StdApplication) runInitializers(ctx context.Context) error {
	if err := app.advancePhase(ctx, PhaseConfigLoading); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range app.moduleNames() {
		initializer, ok := app.moduleRegistry[name].(Initializer)
		if !ok {
			continue
		}
		app.logger.Debug("Running initializer", "module", name)
		g.Go(func() error {
			if err := initializer.Initialize(gctx, app); err != nil {
				return fmt.Errorf("%w: %s: %w", ErrInitializerFailed, name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	app.ready.Fire()
	return app.advancePhase(ctx, PhaseConfigReady)
}

// Start starts every Startable module in dependency order. Root effect
// registrations happen here, so the phase moves to RootEffectsRegistering
// before the first module starts and to Ready after the last.
func (app *StdApplication) Start() error {
	return app.start(context.Background())
}

func (app *StdApplication) start(parent context.Context) error {
	app.stateMu.Lock()
	if !app.initialized || !app.ready.Fired() {
		app.stateMu.Unlock()
		return ErrNotInitialized
	}
	app.stateMu.Unlock()

	ctx, cancel := context.WithCancel(parent)
	app.ctx = ctx
	app.cancel = cancel

	order, err := app.moduleOrder()
	if err != nil {
		return err
	}

	if err = app.advancePhase(ctx, PhaseRootEffectsRegistering); err != nil {
		return err
	}

	for _, name := range order {
		startable, ok := app.moduleRegistry[name].(Startable)
		if !ok {
			continue
		}
		app.logger.Info("Starting module", "module", name)
		if err := startable.Start(ctx); err != nil {
			return fmt.Errorf("failed to start module %s: %w", name, err)
		}
		app.emit(ctx, lifecycle.EventTypeModuleStarted, "Module started", "module", name)
	}

	return app.advancePhase(ctx, PhaseReady)
}

// Stop stops modules in reverse dependency order. Every Stoppable module is
// stopped even when an earlier one fails; the failures are joined.
func (app *StdApplication) Stop() error {
	order, err := app.moduleOrder()
	if err != nil {
		return err
	}
	slices.Reverse(order)

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	var errs []error
	for _, name := range order {
		stoppable, ok := app.moduleRegistry[name].(Stoppable)
		if !ok {
			continue
		}
		app.logger.Info("Stopping module", "module", name)
		if err := stoppable.Stop(ctx); err != nil {
			app.logger.Error("Error stopping module", "module", name, "error", err)
			errs = append(errs, fmt.Errorf("stopping %s: %w", name, err))
			continue
		}
		app.emit(ctx, lifecycle.EventTypeModuleStopped, "Module stopped", "module", name)
	}

	if app.cancel != nil {
		app.cancel()
	}
	return errors.Join(errs...)
}

// Run starts the application and blocks until SIGINT or SIGTERM.
func (app *StdApplication) Run() error {
	return app.RunWithContext(context.Background())
}

// RunWithContext is Run, also returning when ctx is done.
func (app *StdApplication) RunWithContext(ctx context.Context) error {
	if err := app.InitWithContext(ctx); err != nil {
		return err
	}
	if err := app.start(ctx); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		app.logger.Info("Received signal, shutting down", "signal", sig)
	case <-ctx.Done():
		app.logger.Info("Context done, shutting down")
	}

	return app.Stop()
}

func (app *StdApplication) advancePhase(ctx context.Context, next Phase) error {
	prev, err := app.phases.advance(next)
	if err != nil {
		return err
	}
	app.logger.Debug("Phase changed", "from", prev, "to", next)
	app.emit(ctx, lifecycle.EventTypePhaseChanged, fmt.Sprintf("Phase %s -> %s", prev, next),
		"from", string(prev), "to", string(next))
	return nil
}

func (app *StdApplication) emit(ctx context.Context, t lifecycle.EventType, msg string, kv ...any) {
	lifecycle.NewEmitter(app.milestones, milestoneSource).Emit(ctx, t, msg, kv...)
}

func (app *StdApplication) moduleNames() []string {
	names := make([]string, 0, len(app.moduleRegistry))
	for name := range app.moduleRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// moduleOrder returns the dependency order resolved during Init, resolving
// it now if Init has not run.
func (app *StdApplication) moduleOrder() ([]string, error) {
	app.stateMu.Lock()
	defer app.stateMu.Unlock()
	if app.order != nil {
		return slices.Clone(app.order), nil
	}
	g, err := buildModuleGraph(app.moduleRegistry)
	if err != nil {
		return nil, err
	}
	order, err := g.order()
	if err != nil {
		return nil, err
	}
	app.order = order
	app.logger.Debug("Module order", "order", order)
	return slices.Clone(order), nil
}

// phaseSink stamps the current phase on each milestone before forwarding it.
type phaseSink struct {
	next  lifecycle.EventSink
	phase func() Phase
}

func (s phaseSink) Record(ctx context.Context, event *lifecycle.Event) {
	if event != nil && event.Phase == "" {
		event.Phase = string(s.phase())
	}
	s.next.Record(ctx, event)
}
