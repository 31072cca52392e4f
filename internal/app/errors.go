package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrNotInitialized indicates Init has not been called.
	ErrNotInitialized = errors.New("application not initialized")

	// ErrAlreadyInitialized indicates Init was called twice.
	ErrAlreadyInitialized = errors.New("application already initialized")

	// ErrFeatureNotFound indicates no feature is registered under the name.
	ErrFeatureNotFound = errors.New("feature not found")

	// ErrFeatureDisabled indicates the feature's manifest disables it.
	ErrFeatureDisabled = errors.New("feature disabled")
)

// InitError reports a component that failed to start.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return "init " + e.Component + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// FeatureError ties an error to the feature it concerns.
type FeatureError struct {
	Feature string
	Err     error
}

func (e *FeatureError) Error() string {
	return fmt.Sprintf("feature %q: %v", e.Feature, e.Err)
}

func (e *FeatureError) Unwrap() error {
	return e.Err
}
