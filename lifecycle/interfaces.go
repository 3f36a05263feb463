// Package lifecycle records startup and runtime milestones in the order they
// happen. The milestone stream is the observable output of the application:
// every component reports what it did through an EventSink, and observers
// turn that stream into console lines, CloudEvents or an in-memory log.
package lifecycle

import (
	"context"
	"time"
)

// EventSink receives milestones. Implementations must preserve the order in
// which Record is called.
type EventSink interface {
	Record(ctx context.Context, event *Event)
}

// EventObserver defines the interface for observing milestones
type EventObserver interface {
	// OnEvent is called when a milestone is dispatched
	OnEvent(ctx context.Context, event *Event) error

	// ID returns the unique identifier for this observer
	ID() string

	// EventTypes returns the types of events this observer wants to receive.
	// An empty slice means all events.
	EventTypes() []EventType

	// Priority returns the priority of this observer (higher = called first)
	Priority() int
}

// Event represents a single milestone
type Event struct {
	ID        string         `json:"id"`
	Seq       uint64         `json:"seq"`
	Type      EventType      `json:"type"`
	Source    string         `json:"source"`
	Timestamp time.Time      `json:"timestamp"`
	Phase     string         `json:"phase,omitempty"`
	Status    EventStatus    `json:"status,omitempty"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
}

// EventType identifies what kind of milestone an event is
type EventType string

const (
	EventTypeInitializerFactory  EventType = "initializer.factory"
	EventTypeInitializerStart    EventType = "initializer.start"
	EventTypeInitializerComplete EventType = "initializer.complete"

	EventTypePhaseChanged      EventType = "phase.changed"
	EventTypeModuleInitialized EventType = "module.initialized"
	EventTypeModuleStarted     EventType = "module.started"
	EventTypeModuleStopped     EventType = "module.stopped"

	EventTypeStoreReady     EventType = "store.ready"
	EventTypeReducerApplied EventType = "reducer.applied"

	EventTypeEffectsProvided   EventType = "effects.provided"
	EventTypeEffectConstructed EventType = "effect.constructed"
	EventTypeEffectRegistered  EventType = "effect.rule.registered"
	EventTypeEffectInitialized EventType = "effect.initialized"
	EventTypeEffectTriggered   EventType = "effect.triggered"
	EventTypeEffectLog         EventType = "effect.log"
	EventTypeEffectDisposed    EventType = "effect.disposed"

	EventTypeInterceptorConstructed EventType = "interceptor.constructed"
	EventTypeInterceptorRequest     EventType = "interceptor.request"
	EventTypeInterceptorResponse    EventType = "interceptor.response"
	EventTypeInterceptorError       EventType = "interceptor.error"

	EventTypeRouteLoading     EventType = "route.loading"
	EventTypeRouteActivated   EventType = "route.activated"
	EventTypeRouteDeactivated EventType = "route.deactivated"
	EventTypeRoutePhase       EventType = "route.phase"

	EventTypeComponentConstructed EventType = "component.constructed"
	EventTypeComponentInitialized EventType = "component.initialized"
	EventTypeComponentAction      EventType = "component.action"
)

// EventStatus represents the status of an event
type EventStatus string

const (
	EventStatusStarted   EventStatus = "started"
	EventStatusCompleted EventStatus = "completed"
	EventStatusFailed    EventStatus = "failed"
)

// QueryCriteria selects events from a MemoryStore. Empty fields match all.
type QueryCriteria struct {
	EventTypes []EventType `json:"event_types,omitempty"`
	Sources    []string    `json:"sources,omitempty"`
	Since      *time.Time  `json:"since,omitempty"`
	Limit      int         `json:"limit,omitempty"`
}

// Matches reports whether event satisfies the criteria.
func (c *QueryCriteria) Matches(event *Event) bool {
	if c == nil {
		return true
	}
	if len(c.EventTypes) > 0 && !containsType(c.EventTypes, event.Type) {
		return false
	}
	if len(c.Sources) > 0 && !containsString(c.Sources, event.Source) {
		return false
	}
	if c.Since != nil && event.Timestamp.Before(*c.Since) {
		return false
	}
	return true
}

func containsType(types []EventType, t EventType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

func containsString(values []string, s string) bool {
	for _, candidate := range values {
		if candidate == s {
			return true
		}
	}
	return false
}
