package initorder

import (
	"context"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// Observer receives milestones converted to CloudEvents. Observers run
// synchronously on the goroutine that recorded the milestone.
type Observer interface {
	OnEvent(ctx context.Context, event cloudevents.Event) error
	ObserverID() string
}

// Subject is the CloudEvents side of the milestone sink.
type Subject interface {
	// RegisterObserver subscribes observer to eventTypes, or to every
	// milestone when none are given.
	RegisterObserver(observer Observer, eventTypes ...string) error
	UnregisterObserver(observer Observer) error
	NotifyObservers(ctx context.Context, event cloudevents.Event) error
	GetObservers() []ObserverInfo
}

var _ Subject = (*StdApplication)(nil)

// ObserverInfo describes a registered observer.
type ObserverInfo struct {
	ID           string    `json:"id"`
	EventTypes   []string  `json:"eventTypes"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// ObserverFunc handles one CloudEvent. See WithObserver.
type ObserverFunc func(ctx context.Context, event cloudevents.Event) error

// FunctionalObserver adapts an ObserverFunc to Observer.
type FunctionalObserver struct {
	id string
	fn ObserverFunc
}

// NewFunctionalObserver wraps fn as an observer named id.
func NewFunctionalObserver(id string, fn ObserverFunc) Observer {
	return &FunctionalObserver{id: id, fn: fn}
}

func (f *FunctionalObserver) OnEvent(ctx context.Context, event cloudevents.Event) error {
	return f.fn(ctx, event)
}

func (f *FunctionalObserver) ObserverID() string { return f.id }
