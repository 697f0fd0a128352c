package env

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks a malformed dataset or reset parameter.
	ErrConfiguration = errors.New("configuration error")
	// ErrInvalidState is returned by Step outside of an open episode.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidAction is wrapped by every *ActionError.
	ErrInvalidAction = errors.New("invalid action")
)

// ActionReason says why an action was refused.
type ActionReason string

const (
	ReasonOutOfRange ActionReason = "out_of_range"
	ReasonDepot      ActionReason = "depot"
	ReasonVisited    ActionReason = "visited"
	ReasonCapacity   ActionReason = "capacity"
	ReasonTimeWindow ActionReason = "time_window"
)

// ActionError is returned when Step refuses an action. The environment is
// left exactly as it was.
type ActionError struct {
	Action int
	Reason ActionReason
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("invalid action %d: %s", e.Action, e.Reason)
}

func (e *ActionError) Unwrap() error { return ErrInvalidAction }
