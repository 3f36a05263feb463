package initorder

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadyBarrier_WaitBlocksUntilFire(t *testing.T) {
	b := NewReadyBarrier()
	assert.False(t, b.Fired())
	assert.True(t, b.FiredAt().IsZero())

	var wg sync.WaitGroup
	released := make(chan struct{}, 3)
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if b.Wait(context.Background()) == nil {
				released <- struct{}{}
			}
		}()
	}

	select {
	case <-released:
		t.Fatal("waiter released before Fire")
	case <-time.After(20 * time.Millisecond):
	}

	assert.True(t, b.Fire())
	wg.Wait()
	assert.Len(t, released, 3)
	assert.True(t, b.Fired())
	assert.False(t, b.FiredAt().IsZero())
}

func TestReadyBarrier_FireIsIdempotent(t *testing.T) {
	b := NewReadyBarrier()
	require.True(t, b.Fire())
	first := b.FiredAt()

	assert.False(t, b.Fire())
	assert.Equal(t, first, b.FiredAt())

	select {
	case <-b.Done():
	default:
		t.Fatal("Done not closed after Fire")
	}
	assert.NoError(t, b.Wait(context.Background()), "waiting after Fire returns immediately")
}

func TestReadyBarrier_WaitHonoursContext(t *testing.T) {
	b := NewReadyBarrier()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, b.Wait(ctx), context.DeadlineExceeded)
	assert.False(t, b.Fired())
}
