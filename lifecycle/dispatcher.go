package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Static errors for lifecycle package
var (
	ErrObserverNil           = errors.New("observer cannot be nil")
	ErrObserverAlreadyExists = errors.New("observer already registered")
	ErrObserverNotFound      = errors.New("observer not found")
)

// Dispatcher is the application's EventSink. It stamps each event with an
// id, a sequence number and a timestamp, then hands it to every interested
// observer synchronously. Record calls are serialized, so observers see
// events in exactly the order they were recorded.
//
// Observers must not call Record from OnEvent.
type Dispatcher struct {
	mu        sync.Mutex
	observers []registeredObserver
	seq       uint64
	regSeq    uint64
	metrics   EventMetrics
	onError   func(observerID string, event *Event, err error)
}

type registeredObserver struct {
	observer EventObserver
	order    uint64
}

// EventMetrics counts what the dispatcher has seen
type EventMetrics struct {
	TotalEvents    int64               `json:"total_events"`
	EventsByType   map[EventType]int64 `json:"events_by_type"`
	ObserverErrors int64               `json:"observer_errors"`
	ObserverPanics int64               `json:"observer_panics"`
	LastEventTime  time.Time           `json:"last_event_time"`
}

// NewDispatcher creates a new milestone dispatcher
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		metrics: EventMetrics{EventsByType: make(map[EventType]int64)},
	}
}

// OnObserverError installs a callback invoked when an observer fails or panics.
func (d *Dispatcher) OnObserverError(fn func(observerID string, event *Event, err error)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onError = fn
}

// RegisterObserver registers an observer to receive milestones
func (d *Dispatcher) RegisterObserver(observer EventObserver) error {
	if observer == nil {
		return ErrObserverNil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, existing := range d.observers {
		if existing.observer.ID() == observer.ID() {
			return ErrObserverAlreadyExists
		}
	}

	d.regSeq++
	d.observers = append(d.observers, registeredObserver{observer: observer, order: d.regSeq})
	sort.SliceStable(d.observers, func(i, j int) bool {
		pi, pj := d.observers[i].observer.Priority(), d.observers[j].observer.Priority()
		if pi != pj {
			return pi > pj
		}
		return d.observers[i].order < d.observers[j].order
	})
	return nil
}

// UnregisterObserver removes an observer from receiving events
func (d *Dispatcher) UnregisterObserver(observerID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, existing := range d.observers {
		if existing.observer.ID() == observerID {
			d.observers = append(d.observers[:i], d.observers[i+1:]...)
			return nil
		}
	}
	return ErrObserverNotFound
}

// Observers returns the registered observers in delivery order
func (d *Dispatcher) Observers() []EventObserver {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]EventObserver, 0, len(d.observers))
	for _, r := range d.observers {
		out = append(out, r.observer)
	}
	return out
}

// Record implements EventSink.
func (d *Dispatcher) Record(ctx context.Context, event *Event) {
	if event == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	event.Seq = d.seq
	if event.ID == "" {
		event.ID = newEventID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	d.metrics.TotalEvents++
	d.metrics.EventsByType[event.Type]++
	d.metrics.LastEventTime = event.Timestamp

	for _, r := range d.observers {
		if !wants(r.observer, event.Type) {
			continue
		}
		d.deliver(ctx, r.observer, event)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, observer EventObserver, event *Event) {
	defer func() {
		if rec := recover(); rec != nil {
			d.metrics.ObserverPanics++
			if d.onError != nil {
				d.onError(observer.ID(), event, &panicError{value: rec})
			}
		}
	}()

	if err := observer.OnEvent(ctx, event); err != nil {
		d.metrics.ObserverErrors++
		if d.onError != nil {
			d.onError(observer.ID(), event, err)
		}
	}
}

// Metrics returns a copy of the dispatcher metrics
func (d *Dispatcher) Metrics() EventMetrics {
	d.mu.Lock()
	defer d.mu.Unlock()

	m := d.metrics
	m.EventsByType = make(map[EventType]int64, len(d.metrics.EventsByType))
	for k, v := range d.metrics.EventsByType {
		m.EventsByType[k] = v
	}
	return m
}

func wants(observer EventObserver, t EventType) bool {
	types := observer.EventTypes()
	return len(types) == 0 || containsType(types, t)
}

// newEventID generates a time-ordered UUIDv7, falling back to v4.
func newEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}

type panicError struct {
	value any
}

func (p *panicError) Error() string {
	return fmt.Sprintf("observer panicked: %v", p.value)
}

// BasicObserver implements EventObserver with a callback
type BasicObserver struct {
	id         string
	eventTypes []EventType
	priority   int
	callback   func(context.Context, *Event) error
}

// NewBasicObserver creates a new basic observer
func NewBasicObserver(id string, eventTypes []EventType, priority int, callback func(context.Context, *Event) error) *BasicObserver {
	return &BasicObserver{
		id:         id,
		eventTypes: eventTypes,
		priority:   priority,
		callback:   callback,
	}
}

// OnEvent is called when a milestone is dispatched
func (o *BasicObserver) OnEvent(ctx context.Context, event *Event) error {
	if o.callback != nil {
		return o.callback(ctx, event)
	}
	return nil
}

// ID returns the unique identifier for this observer
func (o *BasicObserver) ID() string {
	return o.id
}

// EventTypes returns the types of events this observer wants to receive
func (o *BasicObserver) EventTypes() []EventType {
	return o.eventTypes
}

// Priority returns the priority of this observer (higher = called first)
func (o *BasicObserver) Priority() int {
	return o.priority
}
