package events

import (
	"github.com/kelindar/event"
)

// Bus wraps kelindar/event dispatcher for event broadcasting
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers
// Usage: bus.Publish(LightCommandEvent{...})
func (b *Bus) Publish(ev Event) {
	// kelindar/event dispatches on the static type, so each known event
	// needs its own generic instantiation.
	switch e := ev.(type) {
	case LightCommandEvent:
		event.Publish(b.dispatcher, e)
	case LightStateChangedEvent:
		event.Publish(b.dispatcher, e)
	case LightStateRevertedEvent:
		event.Publish(b.dispatcher, e)
	case LightCommandDroppedEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function
// The handler type determines which events it receives.
// Returns an unsubscribe function; unknown handler types get a no-op one.
// Usage: unsub := bus.Subscribe(func(e LightStateChangedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(LightCommandEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LightStateChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LightStateRevertedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LightCommandDroppedEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}

// Close stops dispatching. Subscribers receive nothing afterwards.
func (b *Bus) Close() error {
	return b.dispatcher.Close()
}
