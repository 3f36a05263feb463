package lifecycle

import (
	"context"
	"sync"
)

// MemoryStore collects milestones in memory in the order they are recorded.
// It can be used directly as an EventSink or attached to a Dispatcher as an
// observer; tests use it to assert ordering without capturing console output.
type MemoryStore struct {
	mu     sync.RWMutex
	id     string
	events []*Event
	seq    uint64
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{id: "memory-store"}
}

// Record implements EventSink. Events recorded directly (without a
// Dispatcher in front) get a local sequence number.
func (s *MemoryStore) Record(_ context.Context, event *Event) {
	if event == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.Seq == 0 {
		s.seq++
		event.Seq = s.seq
	}
	s.events = append(s.events, event)
}

// OnEvent implements EventObserver.
func (s *MemoryStore) OnEvent(ctx context.Context, event *Event) error {
	s.Record(ctx, event)
	return nil
}

// ID implements EventObserver.
func (s *MemoryStore) ID() string { return s.id }

// EventTypes implements EventObserver; the store wants everything.
func (s *MemoryStore) EventTypes() []EventType { return nil }

// Priority implements EventObserver.
func (s *MemoryStore) Priority() int { return 0 }

// Events returns a copy of all recorded events in order
func (s *MemoryStore) Events() []*Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Event, len(s.events))
	copy(out, s.events)
	return out
}

// Query returns the recorded events matching criteria, in order
func (s *MemoryStore) Query(criteria *QueryCriteria) []*Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Event
	for _, event := range s.events {
		if !criteria.Matches(event) {
			continue
		}
		out = append(out, event)
		if criteria != nil && criteria.Limit > 0 && len(out) >= criteria.Limit {
			break
		}
	}
	return out
}

// IndexOf returns the position of the first event of type t from source
// (any source when empty), or -1.
func (s *MemoryStore) IndexOf(t EventType, source string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i, event := range s.events {
		if event.Type == t && (source == "" || event.Source == source) {
			return i
		}
	}
	return -1
}

// Count returns how many events of type t were recorded
func (s *MemoryStore) Count(t EventType) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, event := range s.events {
		if event.Type == t {
			n++
		}
	}
	return n
}

// Reset drops every recorded event
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
	s.seq = 0
}
