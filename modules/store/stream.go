package store

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Predicate selects actions for a subscriber.
type Predicate func(Action) bool

// Handler reacts to an action.
type Handler func(ctx context.Context, action Action)

// ActionStream is a publish/subscribe channel over actions. Delivery is
// synchronous and in subscription order.
type ActionStream struct {
	mu   sync.RWMutex
	subs []*Subscription
}

// Subscription is one predicate+handler pair on an ActionStream.
type Subscription struct {
	id        string
	predicate Predicate
	handler   Handler
	stream    *ActionStream
	cancelled atomic.Bool
}

// ID returns the unique identifier for the subscription
func (s *Subscription) ID() string {
	return s.id
}

// Cancelled reports whether Cancel has been called.
func (s *Subscription) Cancelled() bool {
	return s.cancelled.Load()
}

// Cancel removes the subscription. It is safe to call more than once.
func (s *Subscription) Cancel() error {
	if s.cancelled.Swap(true) {
		return nil
	}
	s.stream.remove(s)
	return nil
}

// Subscribe registers handler for every action matching predicate. A nil
// predicate matches everything.
func (s *ActionStream) Subscribe(predicate Predicate, handler Handler) *Subscription {
	sub := &Subscription{
		id:        uuid.New().String(),
		predicate: predicate,
		handler:   handler,
		stream:    s,
	}
	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()
	return sub
}

// SubscriberCount returns the number of live subscriptions.
func (s *ActionStream) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

func (s *ActionStream) remove(target *Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub == target {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

func (s *ActionStream) publish(ctx context.Context, action Action) {
	s.mu.RLock()
	subs := make([]*Subscription, len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	for _, sub := range subs {
		if sub.Cancelled() {
			continue
		}
		if sub.predicate != nil && !sub.predicate(action) {
			continue
		}
		if sub.handler != nil {
			sub.handler(ctx, action)
		}
	}
}
