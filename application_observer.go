package initorder

import (
	"context"
	"sort"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/GoCodeAlone/initorder/lifecycle"
)

// observerRegistration holds information about a registered observer
type observerRegistration struct {
	observer     Observer
	eventTypes   map[string]bool
	registeredAt time.Time
	order        uint64
}

// RegisterObserver adds a CloudEvents observer. The first registration
// attaches the milestone bridge, so from then on every milestone is also
// delivered as a CloudEvent of type "com.initorder.<milestone type>".
func (app *StdApplication) RegisterObserver(observer Observer, eventTypes ...string) error {
	var bridgeErr error
	app.bridgeOnce.Do(func() {
		bridgeErr = app.dispatcher.RegisterObserver(lifecycle.NewCloudEventObserver(app))
	})
	if bridgeErr != nil {
		return bridgeErr
	}

	app.observerMu.Lock()
	defer app.observerMu.Unlock()

	eventTypeMap := make(map[string]bool, len(eventTypes))
	for _, eventType := range eventTypes {
		eventTypeMap[eventType] = true
	}

	app.observerSeq++
	app.observers[observer.ObserverID()] = &observerRegistration{
		observer:     observer,
		eventTypes:   eventTypeMap,
		registeredAt: time.Now(),
		order:        app.observerSeq,
	}

	app.logger.Debug("Observer registered", "observerID", observer.ObserverID(), "eventTypes", eventTypes)
	return nil
}

// UnregisterObserver removes an observer. Idempotent.
func (app *StdApplication) UnregisterObserver(observer Observer) error {
	app.observerMu.Lock()
	defer app.observerMu.Unlock()

	if _, exists := app.observers[observer.ObserverID()]; exists {
		delete(app.observers, observer.ObserverID())
		app.logger.Debug("Observer unregistered", "observerID", observer.ObserverID())
	}
	return nil
}

// NotifyObservers delivers event to every interested observer synchronously,
// in registration order. Observer errors and panics are logged, not returned.
// Observers must not record milestones from OnEvent.
func (app *StdApplication) NotifyObservers(ctx context.Context, event cloudevents.Event) error {
	if event.Time().IsZero() {
		event.SetTime(time.Now())
	}
	if err := ValidateCloudEvent(event); err != nil {
		app.logger.Error("Invalid CloudEvent", "eventType", event.Type(), "error", err)
		return err
	}

	for _, registration := range app.sortedObservers() {
		if len(registration.eventTypes) > 0 && !registration.eventTypes[event.Type()] {
			continue
		}
		app.notifyOne(ctx, registration.observer, event)
	}
	return nil
}

func (app *StdApplication) notifyOne(ctx context.Context, observer Observer, event cloudevents.Event) {
	defer func() {
		if r := recover(); r != nil {
			app.logger.Error("Observer panicked", "observerID", observer.ObserverID(), "event", event.Type(), "panic", r)
		}
	}()

	if err := observer.OnEvent(ctx, event); err != nil {
		app.logger.Error("Observer error", "observerID", observer.ObserverID(), "event", event.Type(), "error", err)
	}
}

// GetObservers returns information about currently registered observers.
func (app *StdApplication) GetObservers() []ObserverInfo {
	regs := app.sortedObservers()
	info := make([]ObserverInfo, 0, len(regs))
	for _, registration := range regs {
		eventTypes := make([]string, 0, len(registration.eventTypes))
		for eventType := range registration.eventTypes {
			eventTypes = append(eventTypes, eventType)
		}
		sort.Strings(eventTypes)
		info = append(info, ObserverInfo{
			ID:           registration.observer.ObserverID(),
			EventTypes:   eventTypes,
			RegisteredAt: registration.registeredAt,
		})
	}
	return info
}

func (app *StdApplication) sortedObservers() []*observerRegistration {
	app.observerMu.RLock()
	defer app.observerMu.RUnlock()

	regs := make([]*observerRegistration, 0, len(app.observers))
	for _, r := range app.observers {
		regs = append(regs, r)
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].order < regs[j].order })
	return regs
}
