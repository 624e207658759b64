package light

import "errors"

var (
	// ErrAlreadyStarted is returned by Start on a controller that was started before.
	ErrAlreadyStarted = errors.New("light controller already started")
	// ErrInvalidConfig wraps configuration validation failures.
	ErrInvalidConfig = errors.New("invalid light configuration")
	// ErrUnknownKind is returned by ParseKind for names it does not know.
	ErrUnknownKind = errors.New("unknown command kind")
	// ErrUnknownBackend is returned by NewOutputs for an unsupported backend.
	ErrUnknownBackend = errors.New("unknown output backend")
)
