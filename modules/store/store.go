package store

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/GoCodeAlone/initorder"
	"github.com/GoCodeAlone/initorder/lifecycle"
)

// MilestoneSource tags milestones recorded by the store.
const MilestoneSource = "STORE"

// Store holds AppState and applies dispatched actions one at a time, in
// dispatch order. Dispatch may be called from any goroutine, including from
// inside action and state handlers: the call enqueues the action and, if no
// other call is already draining the queue, drains it.
type Store struct {
	logger    initorder.Logger
	milestone *lifecycle.Emitter
	actions   *ActionStream

	mu        sync.Mutex
	state     AppState
	queue     []queuedAction
	draining  bool
	selectors []*StateSubscription
	selSeq    uint64
}

// queuedAction is either an action to apply or, with replay set, a new
// selection waiting for its first state.
type queuedAction struct {
	ctx    context.Context
	action Action
	replay *StateSubscription
}

// New creates a store holding InitialState.
func New(sink lifecycle.EventSink, logger initorder.Logger) *Store {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Store{
		logger:    logger,
		milestone: lifecycle.NewEmitter(sink, MilestoneSource),
		actions:   &ActionStream{},
		state:     InitialState(),
	}
}

// State returns a snapshot of the current state.
func (s *Store) State() AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Actions returns the stream every applied action is published to.
func (s *Store) Actions() *ActionStream {
	return s.actions
}

// Dispatch queues action. When no other dispatch is draining, the queue is
// drained before Dispatch returns.
func (s *Store) Dispatch(ctx context.Context, action Action) {
	if action == nil {
		return
	}

	s.mu.Lock()
	s.queue = append(s.queue, queuedAction{ctx: ctx, action: action})
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	s.drain()
}

// drain must be called with mu held and draining set by the caller. It
// returns with mu released.
func (s *Store) drain() {
	for len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		if next.replay != nil {
			s.replay(next.replay)
		} else {
			s.apply(next.ctx, next.action)
		}

		s.mu.Lock()
	}
	s.draining = false
	s.mu.Unlock()
}

func (s *Store) apply(ctx context.Context, action Action) {
	s.logger.Debug("Dispatching action", "type", action.Type())

	s.mu.Lock()
	next, handled := reduce(s.state, action)
	s.state = next
	snapshot := next.Clone()
	s.mu.Unlock()

	if handled {
		s.milestone.Emit(ctx, lifecycle.EventTypeReducerApplied, "Processing "+action.Type(),
			"action", action.Type(), "effectsInitialized", snapshot.EffectsInitialized)
		for _, sel := range s.liveSelectors() {
			sel.deliver(snapshot)
		}
	}

	s.actions.publish(ctx, action)
}

// StateSubscription receives state snapshots.
type StateSubscription struct {
	id        uint64
	fn        func(AppState)
	store     *Store
	cancelled atomic.Bool
}

func (sub *StateSubscription) deliver(state AppState) {
	if !sub.cancelled.Load() && sub.fn != nil {
		sub.fn(state)
	}
}

// Cancel stops delivery. Safe to call more than once.
func (sub *StateSubscription) Cancel() {
	if !sub.cancelled.Swap(true) {
		sub.store.removeSelector(sub)
	}
}

// Select subscribes fn to state changes with replay-last semantics: fn is
// first called with the state current at that point, then with every
// subsequent state. The replay is queued like an action, so fn may
// Dispatch or Select. When no other dispatch is draining, the replay and
// anything fn dispatches have run before Select returns; otherwise they
// run on the draining goroutine, in queue order.
func (s *Store) Select(fn func(AppState)) *StateSubscription {
	s.mu.Lock()
	s.selSeq++
	sub := &StateSubscription{id: s.selSeq, fn: fn, store: s}
	s.queue = append(s.queue, queuedAction{replay: sub})
	if s.draining {
		s.mu.Unlock()
		return sub
	}
	s.draining = true
	s.drain()
	return sub
}

// replay adds sub to the live selections and hands it the current state.
func (s *Store) replay(sub *StateSubscription) {
	s.mu.Lock()
	if sub.cancelled.Load() {
		s.mu.Unlock()
		return
	}
	s.selectors = append(s.selectors, sub)
	current := s.state.Clone()
	s.mu.Unlock()

	sub.deliver(current)
}

func (s *Store) liveSelectors() []*StateSubscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*StateSubscription, len(s.selectors))
	copy(out, s.selectors)
	return out
}

func (s *Store) removeSelector(target *StateSubscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sel := range s.selectors {
		if sel == target {
			s.selectors = append(s.selectors[:i:i], s.selectors[i+1:]...)
			return
		}
	}
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}
