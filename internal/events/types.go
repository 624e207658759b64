package events

// Event type constants for kelindar/event.
const (
	TypeLightCommand uint32 = iota + 1
	TypeLightStateChanged
	TypeLightStateReverted
	TypeLightCommandDropped
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// LightCommandEvent asks the switch light to apply a command. Components
// that do not hold a controller reference publish this instead of calling
// Submit directly.
type LightCommandEvent struct {
	Kind       string `json:"kind" example:"flash_green"`
	RateMs     uint32 `json:"rate_ms" example:"100"`
	DurationMs uint32 `json:"duration_ms" example:"0"`
	Source     string `json:"source,omitempty" example:"script"`
}

// Type returns the event type identifier for LightCommandEvent.
func (e LightCommandEvent) Type() uint32 { return TypeLightCommand }

// LightStateChangedEvent is published whenever the light runs entry actions
// for a state, including re-entry after a refresh.
type LightStateChangedEvent struct {
	EventID     string `json:"event_id"`
	From        string `json:"from" example:"off"`
	To          string `json:"to" example:"flashing_green"`
	FlashRateMs uint32 `json:"flash_rate_ms"`
	Timed       bool   `json:"timed"`
	Tick        uint64 `json:"tick"`
	Timestamp   string `json:"timestamp" example:"2025-01-27T10:30:00Z"`
}

// Type returns the event type identifier for LightStateChangedEvent.
func (e LightStateChangedEvent) Type() uint32 { return TypeLightStateChanged }

// LightStateRevertedEvent is published when a timed command expires and the
// saved state is restored.
type LightStateRevertedEvent struct {
	EventID   string `json:"event_id"`
	Expired   string `json:"expired" example:"flashing_orange"`
	Restored  string `json:"restored" example:"off"`
	Tick      uint64 `json:"tick"`
	Timestamp string `json:"timestamp"`
}

// Type returns the event type identifier for LightStateRevertedEvent.
func (e LightStateRevertedEvent) Type() uint32 { return TypeLightStateReverted }

// LightCommandDroppedEvent is published when the inbox stayed full for the
// whole enqueue wait and a command was discarded.
type LightCommandDroppedEvent struct {
	EventID    string `json:"event_id"`
	Kind       string `json:"kind"`
	RateMs     uint32 `json:"rate_ms"`
	DurationMs uint32 `json:"duration_ms"`
	Timestamp  string `json:"timestamp"`
}

// Type returns the event type identifier for LightCommandDroppedEvent.
func (e LightCommandDroppedEvent) Type() uint32 { return TypeLightCommandDropped }
