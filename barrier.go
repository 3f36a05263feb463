package initorder

import (
	"context"
	"sync"
	"time"
)

// ReadyBarrier is a one-shot signal separating phase 1 from phase 2.
// It starts closed and can only be fired once; every waiter is released by
// that single Fire call.
type ReadyBarrier struct {
	once    sync.Once
	done    chan struct{}
	firedAt time.Time
	mu      sync.RWMutex
}

// NewReadyBarrier creates an unfired barrier.
func NewReadyBarrier() *ReadyBarrier {
	return &ReadyBarrier{done: make(chan struct{})}
}

// Fire releases all current and future waiters. It reports whether this call
// was the one that fired the barrier.
func (b *ReadyBarrier) Fire() bool {
	fired := false
	b.once.Do(func() {
		b.mu.Lock()
		b.firedAt = time.Now()
		b.mu.Unlock()
		close(b.done)
		fired = true
	})
	return fired
}

// Done returns a channel closed once the barrier has fired.
func (b *ReadyBarrier) Done() <-chan struct{} {
	return b.done
}

// Fired reports whether the barrier has fired, without blocking.
func (b *ReadyBarrier) Fired() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}

// FiredAt returns when the barrier fired, or the zero time.
func (b *ReadyBarrier) FiredAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.firedAt
}

// Wait blocks until the barrier fires or ctx is done.
func (b *ReadyBarrier) Wait(ctx context.Context) error {
	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
