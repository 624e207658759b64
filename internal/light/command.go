package light

import (
	"fmt"
	"strings"
)

// Kind identifies what a Command asks the light to do.
type Kind uint8

// Command kinds. The numeric values match the wire order used by callers.
const (
	KindNone Kind = iota
	KindLightsOn
	KindFlashGreen
	KindFlashOrange
	KindLightsOff
)

var kindNames = [...]string{
	KindNone:        "none",
	KindLightsOn:    "lights_on",
	KindFlashGreen:  "flash_green",
	KindFlashOrange: "flash_orange",
	KindLightsOff:   "lights_off",
}

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	if k.Valid() {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	return int(k) < len(kindNames)
}

// ParseKind accepts the snake_case name, with "-" or "_" and any case.
func ParseKind(s string) (Kind, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return KindNone, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// target maps a kind to the logical state it selects.
// LIGHTS_OFF selects FLASHING_GREEN, not OFF. Existing callers rely on this;
// confirm with them before changing it.
func (k Kind) target() (State, bool) {
	switch k {
	case KindFlashGreen, KindLightsOff:
		return StateFlashingGreen, true
	case KindFlashOrange:
		return StateFlashingOrange, true
	default:
		return StateOff, false
	}
}

// Command is a request sent to the controller through its inbox.
type Command struct {
	Kind Kind
	// RateMs is the flash half-period. Zero holds the line steady.
	RateMs uint32
	// DurationMs bounds how long the command applies before the previous
	// state is restored. Zero applies it indefinitely.
	DurationMs uint32
}

// Timed reports whether the command reverts after DurationMs.
func (c Command) Timed() bool {
	return c.DurationMs != 0
}
