package initorder

import (
	"fmt"
	"strings"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"

	"github.com/GoCodeAlone/initorder/lifecycle"
)

// CloudEvent is the event type delivered to Observers.
type CloudEvent = cloudevents.Event

// NewCloudEvent builds a JSON CloudEvent for observers. eventType is
// qualified with lifecycle.CloudEventTypePrefix unless it already carries
// it, so milestone types can be passed as is. Extension names are
// lower-cased; values the SDK rejects are dropped.
func NewCloudEvent(eventType, source string, data any, extensions map[string]any) cloudevents.Event {
	if !strings.HasPrefix(eventType, lifecycle.CloudEventTypePrefix) {
		eventType = lifecycle.CloudEventTypePrefix + eventType
	}

	event := cloudevents.NewEvent(cloudevents.VersionV1)
	event.SetID(newCloudEventID())
	event.SetSource(source)
	event.SetType(eventType)
	event.SetTime(time.Now())

	if data != nil {
		_ = event.SetData(cloudevents.ApplicationJSON, data)
	}
	for name, value := range extensions {
		event.SetExtension(strings.ToLower(name), value)
	}
	return event
}

func newCloudEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// ValidateCloudEvent reports whether event carries every required attribute.
func ValidateCloudEvent(event cloudevents.Event) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCloudEvent, err)
	}
	return nil
}
