package engine

import (
	"errors"
	"fmt"
)

// Domain errors for simulation runs.
var (
	// ErrInvalidConfiguration indicates bad initial parameters: non-positive
	// mass, negative length, or bodies out of order.
	ErrInvalidConfiguration = errors.New("engine: invalid configuration")

	// ErrDegenerateState indicates post-resolution interpenetration beyond
	// tolerance. This signals a precision or logic defect, never a physical
	// outcome; the engine reports it rather than correcting the state.
	ErrDegenerateState = errors.New("engine: degenerate state")

	// ErrUnbounded indicates the event safety bound was exceeded before the
	// termination predicate held.
	ErrUnbounded = errors.New("engine: event bound exceeded")
)

// ConfigError rejects a configuration before any event is produced.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("engine: invalid configuration: %s", e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfiguration }

// EventError wraps a run failure with the state at the failing event.
type EventError struct {
	Index   int
	Time    float64
	Block1  Block
	Block2  Block
	Wrapped error
}

func (e *EventError) Error() string {
	return fmt.Sprintf("event %d (t=%.6g): %v", e.Index, e.Time, e.Wrapped)
}

func (e *EventError) Unwrap() error { return e.Wrapped }
