package effects

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/GoCodeAlone/initorder"
	"github.com/GoCodeAlone/initorder/lifecycle"
	"github.com/GoCodeAlone/initorder/modules/configloader"
	"github.com/GoCodeAlone/initorder/modules/store"
)

var (
	// ErrNotReady is returned by Register before the ready barrier fires.
	ErrNotReady = errors.New("effects cannot be registered before configuration is ready")
	// ErrFactoryInvalid is returned for a factory without a name or constructor.
	ErrFactoryInvalid = errors.New("effects factory must have a name and a constructor")
	// ErrUnknownEffects is returned when a catalog lookup fails.
	ErrUnknownEffects = errors.New("unknown effects")
)

// Registrar creates registrations. It refuses to construct anything until
// the ready barrier has fired.
type Registrar struct {
	ready  *initorder.ReadyBarrier
	store  *store.Store
	config configloader.Provider
	client *http.Client
	sink   lifecycle.EventSink
	logger initorder.Logger

	mu   sync.Mutex
	live map[string]*Registration
}

// NewRegistrar creates a registrar gated on ready.
func NewRegistrar(ready *initorder.ReadyBarrier, st *store.Store, config configloader.Provider,
	client *http.Client, sink lifecycle.EventSink, logger initorder.Logger,
) *Registrar {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Registrar{
		ready:  ready,
		store:  st,
		config: config,
		client: client,
		sink:   sink,
		logger: logger,
		live:   make(map[string]*Registration),
	}
}

// Register constructs the effects built by f, subscribes its rules to the
// store's action stream and dispatches its OnInit action, in that order.
// scope is a free-form label ("root" or a route name) carried on milestones.
func (r *Registrar) Register(ctx context.Context, scope string, f Factory) (*Registration, error) {
	if !r.ready.Fired() {
		return nil, fmt.Errorf("%w: %s", ErrNotReady, f.Name)
	}
	if f.Name == "" || f.New == nil {
		return nil, ErrFactoryInvalid
	}

	milestone := lifecycle.NewEmitter(r.sink, f.Name)
	loaded, visible := r.config.GetConfig()
	milestone.Emit(ctx, lifecycle.EventTypeEffectConstructed, "CONSTRUCTOR - effects instantiated",
		"scope", scope, "configVisible", visible, "apiUrl", loaded.APIURL)

	eff, err := f.New(Deps{
		Store:     r.store,
		Config:    r.config,
		Client:    r.client,
		Logger:    r.logger,
		Milestone: milestone,
	})
	if err != nil {
		return nil, fmt.Errorf("constructing %s: %w", f.Name, err)
	}

	regCtx, cancel := context.WithCancel(context.Background())
	reg := &Registration{
		id:        uuid.New().String(),
		name:      eff.Name(),
		scope:     scope,
		createdAt: time.Now(),
		store:     r.store,
		milestone: milestone,
		registrar: r,
		ctx:       regCtx,
		cancel:    cancel,
		timers:    make(map[uint64]*time.Timer),
	}

	for _, rule := range eff.Rules() {
		reg.subs = append(reg.subs, r.store.Actions().Subscribe(rule.Match, reg.handler(rule)))
		milestone.Emit(ctx, lifecycle.EventTypeEffectRegistered, "Rule registered: "+rule.Name,
			"rule", rule.Name, "delay", rule.Delay.String())
	}

	r.mu.Lock()
	r.live[reg.id] = reg
	r.mu.Unlock()

	if oi, ok := eff.(OnInitEffects); ok {
		action := oi.OnInit()
		milestone.Emit(ctx, lifecycle.EventTypeEffectInitialized, "OnInit - dispatching "+action.Type(),
			"scope", scope, "action", action.Type())
		r.store.Dispatch(ctx, action)
	}

	r.logger.Debug("Effects registered", "effects", reg.name, "scope", scope, "id", reg.id)
	return reg, nil
}

// Active lists live registrations ordered by creation time.
func (r *Registrar) Active() []RegistrationInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]RegistrationInfo, 0, len(r.live))
	for _, reg := range r.live {
		out = append(out, reg.Info())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *Registrar) forget(reg *Registration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.live, reg.id)
}

// RegistrationInfo describes a live registration.
type RegistrationInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Scope     string    `json:"scope"`
	CreatedAt time.Time `json:"createdAt"`
}

// Registration owns the subscriptions, timers and async runs of one
// effects instance.
type Registration struct {
	id        string
	name      string
	scope     string
	createdAt time.Time
	store     *store.Store
	milestone *lifecycle.Emitter
	registrar *Registrar

	ctx    context.Context
	cancel context.CancelFunc
	subs   []*store.Subscription

	mu       sync.Mutex
	timers   map[uint64]*time.Timer
	timerSeq uint64
	pending  sync.WaitGroup
	disposed atomic.Bool
}

// ID returns the unique identifier for the registration
func (r *Registration) ID() string { return r.id }

// Name returns the effects name
func (r *Registration) Name() string { return r.name }

// Scope returns the scope label given to Register
func (r *Registration) Scope() string { return r.scope }

// Disposed reports whether Dispose has been called.
func (r *Registration) Disposed() bool { return r.disposed.Load() }

// Info describes the registration.
func (r *Registration) Info() RegistrationInfo {
	return RegistrationInfo{ID: r.id, Name: r.name, Scope: r.scope, CreatedAt: r.createdAt}
}

// Wait blocks until every delayed and async run started so far has
// finished or been cancelled. Call it once the dispatches that can trigger
// the rules have returned, or after Dispose.
func (r *Registration) Wait() {
	r.pending.Wait()
}

// Dispose cancels the subscriptions, stops pending delayed emissions and
// cancels the context of async runs. Safe to call more than once.
func (r *Registration) Dispose() error {
	if r.disposed.Swap(true) {
		return nil
	}
	r.cancel()

	var errs []error
	for _, sub := range r.subs {
		errs = append(errs, sub.Cancel())
	}

	r.mu.Lock()
	stopped := 0
	for id, timer := range r.timers {
		if timer.Stop() {
			stopped++
			r.pending.Done()
		}
		delete(r.timers, id)
	}
	r.mu.Unlock()

	r.registrar.forget(r)
	r.milestone.Emit(context.Background(), lifecycle.EventTypeEffectDisposed, "Effects disposed",
		"scope", r.scope, "subscriptions", len(r.subs), "timersStopped", stopped)
	return errors.Join(errs...)
}

func (r *Registration) handler(rule Rule) store.Handler {
	return func(ctx context.Context, action store.Action) {
		if r.disposed.Load() {
			return
		}
		r.milestone.Emit(ctx, lifecycle.EventTypeEffectTriggered, "Rule "+rule.Name+" triggered by "+action.Type(),
			"rule", rule.Name, "action", action.Type())

		switch {
		case rule.Delay > 0:
			r.after(rule.Delay, func() { r.run(r.ctx, rule, action) })
		case rule.Async:
			r.spawn(func() { r.run(r.ctx, rule, action) })
		default:
			r.run(ctx, rule, action)
		}
	}
}

// spawn runs fn on its own goroutine unless the registration is disposed.
func (r *Registration) spawn(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed.Load() {
		return
	}

	r.pending.Add(1)
	go func() {
		defer r.pending.Done()
		fn()
	}()
}

func (r *Registration) after(d time.Duration, fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed.Load() {
		return
	}

	r.timerSeq++
	id := r.timerSeq
	r.pending.Add(1)
	r.timers[id] = time.AfterFunc(d, func() {
		defer r.pending.Done()
		r.mu.Lock()
		delete(r.timers, id)
		r.mu.Unlock()
		if !r.disposed.Load() {
			fn()
		}
	})
}

func (r *Registration) run(ctx context.Context, rule Rule, action store.Action) {
	if rule.Run == nil {
		return
	}
	out, ok := rule.Run(ctx, action)
	if !ok || out == nil || r.disposed.Load() {
		return
	}
	r.store.Dispatch(ctx, out)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}
