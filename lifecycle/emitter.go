package lifecycle

import (
	"context"
	"fmt"
)

// Emitter records milestones on behalf of one component. A nil sink makes
// every call a no-op so components work without observability wired in.
type Emitter struct {
	sink   EventSink
	source string
}

// NewEmitter binds a sink to a source tag such as "APP_INITIALIZER".
func NewEmitter(sink EventSink, source string) *Emitter {
	return &Emitter{sink: sink, source: source}
}

// Source returns the tag this emitter stamps on events.
func (e *Emitter) Source() string {
	if e == nil {
		return ""
	}
	return e.source
}

// Emit records an event. kv is a list of alternating keys and values, the
// same shape the Logger interface accepts.
func (e *Emitter) Emit(ctx context.Context, t EventType, msg string, kv ...any) {
	e.EmitStatus(ctx, t, "", msg, kv...)
}

// EmitStatus records an event carrying a status.
func (e *Emitter) EmitStatus(ctx context.Context, t EventType, status EventStatus, msg string, kv ...any) {
	if e == nil || e.sink == nil {
		return
	}
	e.sink.Record(ctx, &Event{
		Type:    t,
		Source:  e.source,
		Status:  status,
		Message: msg,
		Data:    kvToMap(kv),
	})
}

func kvToMap(kv []any) map[string]any {
	if len(kv) == 0 {
		return nil
	}
	data := make(map[string]any, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		if i+1 >= len(kv) {
			data[key] = nil
			break
		}
		data[key] = kv[i+1]
	}
	return data
}
