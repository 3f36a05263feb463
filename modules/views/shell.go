package views

import (
	"context"
	"sync"

	"github.com/GoCodeAlone/initorder"
	"github.com/GoCodeAlone/initorder/lifecycle"
	"github.com/GoCodeAlone/initorder/modules/configloader"
	"github.com/GoCodeAlone/initorder/modules/store"
)

// ShellSource tags milestones recorded by the application shell.
const ShellSource = "APP_COMPONENT"

// Shell is the root component. It is constructed once root effects are
// registered and follows the state through a store selection.
type Shell struct {
	store     *store.Store
	config    configloader.Provider
	milestone *lifecycle.Emitter
	logger    initorder.Logger

	mu     sync.RWMutex
	latest store.AppState
	sub    *store.StateSubscription
}

// NewShell constructs the shell and records it.
func NewShell(st *store.Store, config configloader.Provider, sink lifecycle.EventSink, logger initorder.Logger) *Shell {
	s := &Shell{
		store:     st,
		config:    config,
		milestone: lifecycle.NewEmitter(sink, ShellSource),
		logger:    logger,
		latest:    store.InitialState(),
	}
	_, visible := config.GetConfig()
	s.milestone.Emit(context.Background(), lifecycle.EventTypeComponentConstructed,
		"CONSTRUCTOR - AppComponent instantiated", "configVisible", visible)
	return s
}

// OnInit subscribes to the state. The current state is delivered before
// OnInit returns unless a dispatch is draining the store, in which case it
// arrives once that drain reaches it.
func (s *Shell) OnInit(ctx context.Context) {
	cfg, _ := s.config.GetConfig()
	s.sub = s.store.Select(func(state store.AppState) {
		s.mu.Lock()
		s.latest = state
		s.mu.Unlock()
		s.logger.Debug("State changed", "initialized", state.Initialized, "effects", state.EffectsInitialized)
	})
	s.milestone.Emit(ctx, lifecycle.EventTypeComponentInitialized, "OnInit - AppComponent initialized",
		"apiUrl", cfg.APIURL)
}

// State returns the latest state the shell has seen.
func (s *Shell) State() store.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest.Clone()
}

// Close cancels the state subscription.
func (s *Shell) Close() {
	if s.sub != nil {
		s.sub.Cancel()
	}
}
