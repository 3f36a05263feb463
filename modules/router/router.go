package router

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GoCodeAlone/initorder"
	"github.com/GoCodeAlone/initorder/lifecycle"
	"github.com/GoCodeAlone/initorder/modules/configloader"
	"github.com/GoCodeAlone/initorder/modules/effects"
	"github.com/GoCodeAlone/initorder/modules/store"
)

// MilestoneSource tags milestones recorded by the router.
const MilestoneSource = "ROUTER"

const (
	// maxRedirects bounds redirect chains.
	maxRedirects = 8
	// maxHistory bounds the remembered navigation history.
	maxHistory = 64
)

var (
	// ErrRouteNotFound is returned when navigating to an unknown path.
	ErrRouteNotFound = errors.New("route not found")
	// ErrInvalidRoute is returned by Add for a route with neither view nor redirect.
	ErrInvalidRoute = errors.New("route must have a view or a redirect")
	// ErrRedirectLoop is returned when redirects do not settle.
	ErrRedirectLoop = errors.New("too many redirects")
)

// Options configures a Router.
type Options struct {
	// RetainRouteEffects keeps the registrations of a deactivated route
	// alive instead of disposing them.
	RetainRouteEffects bool
}

// Router activates routes. Views and route effects are constructed on every
// navigation, never cached. Navigations are serialized.
type Router struct {
	registrar *effects.Registrar
	store     *store.Store
	config    configloader.Provider
	sink      lifecycle.EventSink
	logger    initorder.Logger
	milestone *lifecycle.Emitter
	opts      Options

	mu       sync.RWMutex
	routes   map[string]Route
	current  *Activation
	retained []*Activation
	history  []string

	navMu sync.Mutex
}

// New creates a router with no routes.
func New(registrar *effects.Registrar, st *store.Store, config configloader.Provider,
	sink lifecycle.EventSink, logger initorder.Logger, opts Options,
) *Router {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Router{
		registrar: registrar,
		store:     st,
		config:    config,
		sink:      sink,
		logger:    logger,
		milestone: lifecycle.NewEmitter(sink, MilestoneSource),
		opts:      opts,
		routes:    make(map[string]Route),
	}
}

// Normalize strips surrounding whitespace and trailing slashes and ensures
// a leading slash. The empty path stays empty.
func Normalize(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	path = "/" + strings.Trim(path, "/")
	return path
}

// Add registers route, replacing any route with the same path.
func (r *Router) Add(route Route) error {
	if route.View == nil && route.RedirectTo == "" {
		return fmt.Errorf("%w: %q", ErrInvalidRoute, route.Path)
	}
	route.Path = Normalize(route.Path)
	if route.Name == "" {
		route.Name = strings.TrimPrefix(route.Path, "/")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[route.Path] = route
	return nil
}

// Routes returns the registered routes sorted by path.
func (r *Router) Routes() []Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Route, 0, len(r.routes))
	for _, route := range r.routes {
		out = append(out, route)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Resolve follows redirects from path to a route with a view.
func (r *Router) Resolve(path string) (Route, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	target := Normalize(path)
	for range maxRedirects {
		route, ok := r.routes[target]
		if !ok {
			return Route{}, fmt.Errorf("%w: %q", ErrRouteNotFound, path)
		}
		if route.RedirectTo == "" {
			return route, nil
		}
		target = Normalize(route.RedirectTo)
	}
	return Route{}, fmt.Errorf("%w: %q", ErrRedirectLoop, path)
}

// Current returns the active route's activation, or nil.
func (r *Router) Current() *Activation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Retained returns deactivated activations whose registrations were kept.
func (r *Router) Retained() []*Activation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Activation, len(r.retained))
	copy(out, r.retained)
	return out
}

// History returns the navigated paths, oldest first.
func (r *Router) History() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.history))
	copy(out, r.history)
	return out
}

// Navigate activates the route for path. The previous activation is
// deactivated first, then the route's effects are registered, then its
// view is constructed and initialized.
func (r *Router) Navigate(ctx context.Context, path string) (*Activation, error) {
	route, err := r.Resolve(path)
	if err != nil {
		return nil, err
	}

	r.navMu.Lock()
	defer r.navMu.Unlock()

	r.milestone.Emit(ctx, lifecycle.EventTypeRouteLoading, "Loading route "+route.Path,
		"path", path, "route", route.Name, "effects", factoryNames(route.Effects))

	r.deactivate(ctx)

	act := &Activation{
		id:          uuid.New().String(),
		route:       route,
		path:        path,
		activatedAt: time.Now(),
		milestone:   r.milestone,
	}
	act.setPhase(ctx, RouteEffectsRegistering)

	for _, f := range route.Effects {
		reg, err := r.registrar.Register(ctx, route.Name, f)
		if err != nil {
			_ = act.Dispose()
			return nil, fmt.Errorf("activating %s: %w", route.Path, err)
		}
		act.own(reg)
	}

	view := route.View(ViewDeps{
		Store:     r.store,
		Config:    r.config,
		Logger:    r.logger,
		Milestone: lifecycle.NewEmitter(r.sink, viewSource(route)),
		Path:      route.Path,
	})
	act.setView(view)
	view.OnInit(ctx)
	act.setPhase(ctx, RouteReady)

	r.mu.Lock()
	r.current = act
	r.history = append(r.history, route.Path)
	if over := len(r.history) - maxHistory; over > 0 {
		r.history = append(r.history[:0:0], r.history[over:]...)
	}
	r.mu.Unlock()

	r.milestone.Emit(ctx, lifecycle.EventTypeRouteActivated, "Route activated "+route.Path,
		"route", route.Name, "view", view.Name(), "activation", act.id,
		"registrations", len(act.Registrations()))
	r.logger.Debug("Route activated", "path", route.Path, "activation", act.id)
	return act, nil
}

// Back leaves the current view for the root route, which redirects home.
func (r *Router) Back(ctx context.Context) (*Activation, error) {
	return r.Navigate(ctx, "/")
}

// Close deactivates the current route and disposes retained activations.
func (r *Router) Close(ctx context.Context) error {
	r.navMu.Lock()
	defer r.navMu.Unlock()

	r.mu.Lock()
	current := r.current
	retained := r.retained
	r.current = nil
	r.retained = nil
	r.mu.Unlock()

	var errs []error
	if current != nil {
		r.milestone.Emit(ctx, lifecycle.EventTypeRouteDeactivated, "Route deactivated "+current.route.Path,
			"route", current.route.Name, "activation", current.id, "disposed", true)
		errs = append(errs, current.Dispose())
	}
	for _, act := range retained {
		errs = append(errs, act.Dispose())
	}
	return errors.Join(errs...)
}

// deactivate must be called with navMu held.
func (r *Router) deactivate(ctx context.Context) {
	r.mu.Lock()
	prev := r.current
	r.current = nil
	if prev != nil && r.opts.RetainRouteEffects {
		r.retained = append(r.retained, prev)
	}
	r.mu.Unlock()

	if prev == nil {
		return
	}
	dispose := !r.opts.RetainRouteEffects
	r.milestone.Emit(ctx, lifecycle.EventTypeRouteDeactivated, "Route deactivated "+prev.route.Path,
		"route", prev.route.Name, "activation", prev.id, "disposed", dispose)
	if dispose {
		if err := prev.Dispose(); err != nil {
			r.logger.Warn("Disposing route effects failed", "route", prev.route.Name, "error", err)
		}
	}
}

func viewSource(route Route) string {
	return strings.ToUpper(route.Name) + "_VIEW"
}

func factoryNames(fs []effects.Factory) []string {
	names := make([]string, 0, len(fs))
	for _, f := range fs {
		names = append(names, f.Name)
	}
	return names
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}
