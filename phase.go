package initorder

import (
	"fmt"
	"sync"
)

// Phase represents the global startup phase of the application.
type Phase string

const (
	// PhaseUninitialized is the phase before Init is called.
	PhaseUninitialized Phase = "uninitialized"

	// PhaseConfigLoading indicates initializers are running.
	PhaseConfigLoading Phase = "config_loading"

	// PhaseConfigReady indicates every initializer completed and the ready
	// barrier has fired.
	PhaseConfigReady Phase = "config_ready"

	// PhaseRootEffectsRegistering indicates modules are being started and
	// root effect registrations constructed.
	PhaseRootEffectsRegistering Phase = "root_effects_registering"

	// PhaseReady indicates all modules started.
	PhaseReady Phase = "ready"
)

var phaseTransitions = map[Phase][]Phase{
	PhaseUninitialized:          {PhaseConfigLoading},
	PhaseConfigLoading:          {PhaseConfigReady},
	PhaseConfigReady:            {PhaseRootEffectsRegistering},
	PhaseRootEffectsRegistering: {PhaseReady},
}

// phaseTracker guards the current phase and rejects out-of-order moves.
type phaseTracker struct {
	mu      sync.RWMutex
	current Phase
	history []Phase
}

func newPhaseTracker() *phaseTracker {
	return &phaseTracker{
		current: PhaseUninitialized,
		history: []Phase{PhaseUninitialized},
	}
}

func (t *phaseTracker) get() Phase {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

func (t *phaseTracker) snapshot() []Phase {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Phase, len(t.history))
	copy(out, t.history)
	return out
}

// advance moves to next if the transition table allows it and returns the
// phase that was left.
func (t *phaseTracker) advance(next Phase) (Phase, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, allowed := range phaseTransitions[t.current] {
		if allowed == next {
			prev := t.current
			t.current = next
			t.history = append(t.history, next)
			return prev, nil
		}
	}
	return t.current, fmt.Errorf("%w: %s -> %s", ErrInvalidPhaseTransition, t.current, next)
}
