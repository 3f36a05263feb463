package lifecycle

import (
	"context"
	"sort"
)

// InfoLogger is the subset of the application Logger the console observer needs.
type InfoLogger interface {
	Info(msg string, args ...any)
}

// LoggerObserver writes every milestone as one structured log line of the
// form "[Source] Message" followed by the event data as key/value pairs.
type LoggerObserver struct {
	id     string
	logger InfoLogger
}

// NewLoggerObserver creates a console observer backed by logger
func NewLoggerObserver(logger InfoLogger) *LoggerObserver {
	return &LoggerObserver{id: "console-logger", logger: logger}
}

func (o *LoggerObserver) OnEvent(_ context.Context, event *Event) error {
	if o.logger == nil {
		return nil
	}

	args := []any{"seq", event.Seq, "type", string(event.Type)}
	if event.Phase != "" {
		args = append(args, "phase", event.Phase)
	}
	if event.Status != "" {
		args = append(args, "status", string(event.Status))
	}

	keys := make([]string, 0, len(event.Data))
	for k := range event.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, k, event.Data[k])
	}

	o.logger.Info("["+event.Source+"] "+event.Message, args...)
	return nil
}

func (o *LoggerObserver) ID() string              { return o.id }
func (o *LoggerObserver) EventTypes() []EventType { return nil }

// Priority places the console ahead of collectors so log lines appear before
// anything a slower observer might print.
func (o *LoggerObserver) Priority() int { return 100 }
