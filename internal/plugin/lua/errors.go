package lua

import "errors"

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrNotFunction is returned when a global expected to be a function is not one.
	ErrNotFunction = errors.New("lua value is not a function")

	// ErrBadResult is returned when an entry point returns an unsupported value.
	ErrBadResult = errors.New("unsupported lua result")
)
