package light

// State is the logical display state of the switch light.
type State uint8

// Logical states.
const (
	StateOff State = iota
	StateFlashingGreen
	StateFlashingOrange
)

// String returns the snake_case name of the state.
func (s State) String() string {
	switch s {
	case StateOff:
		return "off"
	case StateFlashingGreen:
		return "flashing_green"
	case StateFlashingOrange:
		return "flashing_orange"
	default:
		return "unknown"
	}
}

// DisplayState is the controller's record of what the light shows.
type DisplayState struct {
	Current  State
	Previous State
	// FlashRateMs is the active half-period; zero means steady.
	FlashRateMs uint32
	// Timed marks a state that reverts at RevertAt. RevertAt is meaningless
	// otherwise.
	Timed    bool
	RevertAt Tick
	// StartedAt is the tick at which Current was last entered.
	StartedAt Tick
}
