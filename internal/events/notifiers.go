package events

import (
	"context"

	"github.com/rs/zerolog"
)

// LogNotifier writes every event to a zerolog logger at debug level.
type LogNotifier struct {
	Logger zerolog.Logger
}

// Notify implements Notifier.
func (n LogNotifier) Notify(_ context.Context, event Event) error {
	n.Logger.Debug().
		Str("event_id", event.ID.String()).
		Str("topic", event.Topic).
		Str("session_id", event.SessionID.String()).
		RawJSON("payload", event.Payload).
		Msg("checkout_event")
	return nil
}

// Journal keeps emitted events in memory in emission order.
type Journal struct {
	events []Event
}

// Notify implements Notifier.
func (j *Journal) Notify(_ context.Context, event Event) error {
	j.events = append(j.events, event)
	return nil
}

// Events returns a copy of the recorded events.
func (j *Journal) Events() []Event {
	out := make([]Event, len(j.events))
	copy(out, j.events)
	return out
}

// ByTopic returns the recorded events for topic.
func (j *Journal) ByTopic(topic string) []Event {
	var out []Event
	for _, ev := range j.events {
		if ev.Topic == topic {
			out = append(out, ev)
		}
	}
	return out
}
