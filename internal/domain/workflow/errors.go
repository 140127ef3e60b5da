package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when a lifecycle transition is not
	// allowed from the current status
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidState is returned when a status value is not valid
	ErrInvalidState = errors.New("invalid state")
)
