package lifecycle

import (
	"context"
	"fmt"
	"strconv"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// CloudEventTypePrefix is prepended to every milestone type when it is
// converted to a CloudEvent.
const CloudEventTypePrefix = "com.initorder."

// Notifier receives CloudEvents. The application's observer subject
// satisfies it.
type Notifier interface {
	NotifyObservers(ctx context.Context, event cloudevents.Event) error
}

// CloudEventObserver bridges the milestone stream to CloudEvents observers.
type CloudEventObserver struct {
	id       string
	target   Notifier
	types    []EventType
	priority int
}

// NewCloudEventObserver forwards the given milestone types (all when none)
// to target.
func NewCloudEventObserver(target Notifier, types ...EventType) *CloudEventObserver {
	return &CloudEventObserver{id: "cloudevents-bridge", target: target, types: types}
}

func (o *CloudEventObserver) OnEvent(ctx context.Context, event *Event) error {
	if o.target == nil {
		return nil
	}
	ce, err := ToCloudEvent(event)
	if err != nil {
		return err
	}
	if err := o.target.NotifyObservers(ctx, ce); err != nil {
		return fmt.Errorf("forwarding milestone %s: %w", event.Type, err)
	}
	return nil
}

func (o *CloudEventObserver) ID() string              { return o.id }
func (o *CloudEventObserver) EventTypes() []EventType { return o.types }
func (o *CloudEventObserver) Priority() int           { return o.priority }

// ToCloudEvent converts a milestone into a CloudEvent. The milestone id,
// source and timestamp carry over; sequence and phase become extensions.
func ToCloudEvent(event *Event) (cloudevents.Event, error) {
	ce := cloudevents.NewEvent()
	id := event.ID
	if id == "" {
		id = newEventID()
	}
	ce.SetID(id)
	ce.SetSource(event.Source)
	ce.SetType(CloudEventTypePrefix + string(event.Type))
	ce.SetTime(event.Timestamp)
	ce.SetSpecVersion(cloudevents.VersionV1)
	ce.SetExtension("seq", strconv.FormatUint(event.Seq, 10))
	if event.Phase != "" {
		ce.SetExtension("phase", event.Phase)
	}
	if event.Status != "" {
		ce.SetExtension("status", string(event.Status))
	}

	payload := map[string]any{"message": event.Message}
	if len(event.Data) > 0 {
		payload["data"] = event.Data
	}
	if err := ce.SetData(cloudevents.ApplicationJSON, payload); err != nil {
		return ce, fmt.Errorf("encoding milestone data: %w", err)
	}
	return ce, nil
}
