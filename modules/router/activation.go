package router

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GoCodeAlone/initorder/lifecycle"
	"github.com/GoCodeAlone/initorder/modules/effects"
)

// Activation records one navigation to a route. It owns the effect
// registrations made for that navigation.
type Activation struct {
	id          string
	route       Route
	path        string
	activatedAt time.Time
	milestone   *lifecycle.Emitter

	mu    sync.RWMutex
	phase RoutePhase
	view  View
	regs  []*effects.Registration

	disposed atomic.Bool
}

// ID returns the unique identifier for the activation
func (a *Activation) ID() string { return a.id }

// Route returns the activated route
func (a *Activation) Route() Route { return a.route }

// Path returns the path that was navigated to, before redirects.
func (a *Activation) Path() string { return a.path }

// ActivatedAt returns when the navigation started.
func (a *Activation) ActivatedAt() time.Time { return a.activatedAt }

// View returns the view constructed for this activation.
func (a *Activation) View() View {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.view
}

// Phase returns the activation's sub-state.
func (a *Activation) Phase() RoutePhase {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.phase
}

// Registrations returns the effect registrations owned by the activation.
func (a *Activation) Registrations() []*effects.Registration {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]*effects.Registration, len(a.regs))
	copy(out, a.regs)
	return out
}

// Disposed reports whether Dispose has been called.
func (a *Activation) Disposed() bool { return a.disposed.Load() }

// Dispose disposes every owned registration. Safe to call more than once.
func (a *Activation) Dispose() error {
	if a.disposed.Swap(true) {
		return nil
	}

	a.mu.Lock()
	regs := a.regs
	a.mu.Unlock()

	var errs []error
	for _, reg := range regs {
		errs = append(errs, reg.Dispose())
	}
	a.setPhase(context.Background(), RouteDisposed)
	return errors.Join(errs...)
}

func (a *Activation) setPhase(ctx context.Context, phase RoutePhase) {
	a.mu.Lock()
	prev := a.phase
	a.phase = phase
	a.mu.Unlock()

	a.milestone.Emit(ctx, lifecycle.EventTypeRoutePhase, "Route "+a.route.Name+" "+string(phase),
		"route", a.route.Name, "from", string(prev), "to", string(phase), "activation", a.id)
}

func (a *Activation) own(reg *effects.Registration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.regs = append(a.regs, reg)
}

func (a *Activation) setView(v View) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.view = v
}
