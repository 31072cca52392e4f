package discovery

import (
	"fmt"

	"github.com/dshills/workbench/internal/plugin"
)

// ErrorType classifies a discovery error.
type ErrorType string

// Discovery error types.
const (
	// ErrorImport - the plugin module could not be loaded at all.
	ErrorImport ErrorType = "import"

	// ErrorValidation - the module loaded but breaks the manifest contract.
	ErrorValidation ErrorType = "validation"

	// ErrorDependency - missing, unresolved or circular dependencies.
	ErrorDependency ErrorType = "dependency"
)

// Error describes one plugin that could not be registered.
type Error struct {
	FeaturePath string    // Plugin directory
	Type        ErrorType // import, validation or dependency
	Message     string    // Human-readable, names the offending element
	Err         error     // Underlying cause
}

func (e Error) Error() string {
	return fmt.Sprintf("%s error in %s: %s", e.Type, e.FeaturePath, e.Message)
}

func (e Error) Unwrap() error {
	return e.Err
}

// Result is the outcome of one discovery pass.
type Result struct {
	// Features in dependency order: every dependency precedes its dependents.
	Features []*plugin.Feature

	// Errors for every plugin that was not registered.
	Errors []Error

	// Warnings such as legacy-format notices.
	Warnings []string
}

// HasErrors returns true if any plugin failed to load.
func (r Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// ErrorsOfType returns the errors of the given type, in discovery order.
func (r Result) ErrorsOfType(t ErrorType) []Error {
	var out []Error
	for _, e := range r.Errors {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// FeatureNames returns the feature names in result order.
func (r Result) FeatureNames() []string {
	names := make([]string, len(r.Features))
	for i, f := range r.Features {
		names[i] = f.Name()
	}
	return names
}
