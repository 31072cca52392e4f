package plugin

import "errors"

// Plugin contract errors.
var (
	// ErrNoEntryPoint is returned when a directory holds no file any runtime recognizes.
	ErrNoEntryPoint = errors.New("plugin has no recognized module (manifest or service)")

	// ErrMissingManifest is returned when a manifest module does not define its manifest.
	ErrMissingManifest = errors.New("manifest: definition not found")

	// ErrMissingRun is returned when a manifest module defines no entry point.
	ErrMissingRun = errors.New("manifest: run function not found")

	// ErrMissingField is returned when a required manifest field is empty.
	ErrMissingField = errors.New("manifest: missing required field")

	// ErrInvalidManifest is returned when a manifest cannot be decoded into the contract.
	ErrInvalidManifest = errors.New("manifest: invalid")

	// ErrUnknownCategory is returned for a category outside the fixed enumeration.
	ErrUnknownCategory = errors.New("manifest: unknown category")

	// ErrDependencyNotFound is returned when a required dependency is missing.
	ErrDependencyNotFound = errors.New("plugin dependency not found")

	// ErrUnresolvedDependency is returned when a dependency exists but was excluded.
	ErrUnresolvedDependency = errors.New("plugin dependency unresolved")

	// ErrCyclicDependency is returned when plugins have circular dependencies.
	ErrCyclicDependency = errors.New("cyclic plugin dependency detected")

	// ErrNoResult is returned when a task finishes without producing a result.
	ErrNoResult = errors.New("plugin produced no result")
)
