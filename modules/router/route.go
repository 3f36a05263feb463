package router

import (
	"context"

	"github.com/GoCodeAlone/initorder"
	"github.com/GoCodeAlone/initorder/lifecycle"
	"github.com/GoCodeAlone/initorder/modules/configloader"
	"github.com/GoCodeAlone/initorder/modules/effects"
	"github.com/GoCodeAlone/initorder/modules/store"
)

// View is the presentation of one route. A new View is constructed on
// every activation.
type View interface {
	Name() string
	// OnInit runs once, after the route's effects are registered.
	OnInit(ctx context.Context)
	// Render returns the view model.
	Render() any
}

// ViewDeps is what a view constructor receives.
type ViewDeps struct {
	Store     *store.Store
	Config    configloader.Provider
	Logger    initorder.Logger
	Milestone *lifecycle.Emitter
	Path      string
}

// ViewFactory constructs a view.
type ViewFactory func(deps ViewDeps) View

// Route maps a path to a lazily constructed view and route-scoped effects.
// A route with RedirectTo set has neither.
type Route struct {
	Path       string
	Name       string
	View       ViewFactory
	Effects    []effects.Factory
	RedirectTo string
}

// RoutePhase is the per-activation sub-state.
type RoutePhase string

const (
	// RouteEffectsRegistering means the route's effects are being registered.
	RouteEffectsRegistering RoutePhase = "route_effects_registering"
	// RouteReady means the route's effects are registered and its view initialized.
	RouteReady RoutePhase = "route_ready"
	// RouteDisposed means the activation's registrations were disposed.
	RouteDisposed RoutePhase = "route_disposed"
)
