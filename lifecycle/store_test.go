package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RecordDirectly(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Record(ctx, &Event{Type: EventTypeInitializerStart, Source: "APP_INITIALIZER"})
	s.Record(ctx, &Event{Type: EventTypeEffectInitialized, Source: "AppEffects"})
	s.Record(ctx, &Event{Type: EventTypeEffectInitialized, Source: "UserEffects"})
	s.Record(ctx, nil)

	events := s.Events()
	require.Len(t, events, 3)
	assert.Equal(t, uint64(1), events[0].Seq)
	assert.Equal(t, uint64(3), events[2].Seq)

	assert.Equal(t, 1, s.IndexOf(EventTypeEffectInitialized, ""))
	assert.Equal(t, 2, s.IndexOf(EventTypeEffectInitialized, "UserEffects"))
	assert.Equal(t, -1, s.IndexOf(EventTypeStoreReady, ""))
	assert.Equal(t, 2, s.Count(EventTypeEffectInitialized))

	s.Reset()
	assert.Empty(t, s.Events())
}

func TestMemoryStore_Query(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	old := time.Now().Add(-time.Hour)
	now := time.Now()

	s.Record(ctx, &Event{Type: EventTypeReducerApplied, Source: "REDUCER", Timestamp: old})
	s.Record(ctx, &Event{Type: EventTypeReducerApplied, Source: "REDUCER", Timestamp: now})
	s.Record(ctx, &Event{Type: EventTypeEffectLog, Source: "UserEffects", Timestamp: now})

	assert.Len(t, s.Query(nil), 3)
	assert.Len(t, s.Query(&QueryCriteria{EventTypes: []EventType{EventTypeReducerApplied}}), 2)
	assert.Len(t, s.Query(&QueryCriteria{Sources: []string{"UserEffects"}}), 1)

	since := now.Add(-time.Minute)
	assert.Len(t, s.Query(&QueryCriteria{Since: &since}), 2)
	assert.Len(t, s.Query(&QueryCriteria{Limit: 1}), 1)
}

func TestEmitter(t *testing.T) {
	s := NewMemoryStore()
	e := NewEmitter(s, "APP_INITIALIZER")
	e.Emit(context.Background(), EventTypeInitializerComplete, "loaded", "apiUrl", "https://api.example.com", "dangling")

	events := s.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "APP_INITIALIZER", events[0].Source)
	assert.Equal(t, "https://api.example.com", events[0].Data["apiUrl"])
	assert.Contains(t, events[0].Data, "dangling")

	var nilEmitter *Emitter
	assert.NotPanics(t, func() { nilEmitter.Emit(context.Background(), EventTypeStoreReady, "x") })
	assert.NotPanics(t, func() { NewEmitter(nil, "x").Emit(context.Background(), EventTypeStoreReady, "x") })
}

type recordingLogger struct {
	lines []string
	args  [][]any
}

func (l *recordingLogger) Info(msg string, args ...any) {
	l.lines = append(l.lines, msg)
	l.args = append(l.args, args)
}

func TestLoggerObserver(t *testing.T) {
	logger := &recordingLogger{}
	d := NewDispatcher()
	require.NoError(t, d.RegisterObserver(NewLoggerObserver(logger)))

	d.Record(context.Background(), &Event{
		Type:    EventTypeInitializerComplete,
		Source:  "APP_INITIALIZER",
		Message: "Config loaded",
		Data:    map[string]any{"b": 2, "a": 1},
	})

	require.Len(t, logger.lines, 1)
	assert.Equal(t, "[APP_INITIALIZER] Config loaded", logger.lines[0])
	assert.Equal(t, []any{"seq", uint64(1), "type", "initializer.complete", "a", 1, "b", 2}, logger.args[0])
}
