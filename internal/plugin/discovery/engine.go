// Package discovery turns a plugin directory tree into an ordered list of
// features plus every error and warning met along the way.
//
// Discovery never stops at the first failure: each broken plugin becomes one
// Error and the remaining plugins still load.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/workbench/internal/logging"
	"github.com/dshills/workbench/internal/plugin"
)

// Engine discovers plugins below a root directory.
type Engine struct {
	// Root directory; each immediate subdirectory is one candidate.
	root string

	// Runtimes in precedence order; the first match loads a candidate.
	runtimes []plugin.Runtime
}

// Option configures an Engine.
type Option func(*Engine)

// WithRuntimes sets the runtimes used to load candidates.
func WithRuntimes(runtimes ...plugin.Runtime) Option {
	return func(e *Engine) {
		e.runtimes = runtimes
	}
}

// New creates a discovery engine for root.
func New(root string, opts ...Option) *Engine {
	e := &Engine{root: root}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Root returns the plugin root directory.
func (e *Engine) Root() string {
	return e.root
}

// candidate is a structurally valid plugin awaiting dependency resolution.
type candidate struct {
	manifest plugin.Manifest
	entry    plugin.Entry
	path     string
}

// Discover scans the root directory and returns the ordered features.
// Every call rescans; the engine keeps no state between calls.
func (e *Engine) Discover(ctx context.Context) Result {
	logger := logging.Component(ctx, "discovery").With("root", e.root)

	result := Result{
		Features: []*plugin.Feature{},
		Errors:   []Error{},
		Warnings: []string{},
	}

	dirs, err := e.candidateDirs()
	if err != nil {
		logger.Error("cannot read plugin root", "error", err)
		result.Errors = append(result.Errors, Error{
			FeaturePath: e.root,
			Type:        ErrorImport,
			Message:     fmt.Sprintf("cannot read plugin root: %v", err),
			Err:         err,
		})
		return result
	}

	var candidates []candidate
	seen := make(map[string]string)

	for _, dir := range dirs {
		rt := e.runtimeFor(dir)
		if rt == nil {
			logger.Debug("skipping directory without plugin module", "path", dir)
			continue
		}

		c, warning, derr := e.inspect(ctx, rt, dir)
		if derr != nil {
			logger.Warn("plugin rejected", "path", dir, "type", derr.Type, "reason", derr.Message)
			result.Errors = append(result.Errors, *derr)
			continue
		}
		if warning != "" {
			logger.Warn(warning)
			result.Warnings = append(result.Warnings, warning)
		}

		// First discovered wins
		if first, dup := seen[c.manifest.Name]; dup {
			msg := fmt.Sprintf("duplicate feature name %q in %s ignored; keeping %s", c.manifest.Name, dir, first)
			logger.Warn(msg)
			result.Warnings = append(result.Warnings, msg)
			continue
		}
		seen[c.manifest.Name] = dir
		candidates = append(candidates, c)
	}

	features, depErrs := resolve(candidates)
	result.Features = append(result.Features, features...)
	result.Errors = append(result.Errors, depErrs...)

	logger.Info("discovery finished",
		"features", len(result.Features),
		"errors", len(result.Errors),
		"warnings", len(result.Warnings))

	return result
}

// candidateDirs lists the immediate subdirectories of root in lexical order.
// A missing root is not an error.
func (e *Engine) candidateDirs() ([]string, error) {
	entries, err := os.ReadDir(e.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	dirs := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			continue
		}
		dirs = append(dirs, filepath.Join(e.root, name))
	}
	return dirs, nil
}

// runtimeFor returns the first runtime that recognizes dir.
func (e *Engine) runtimeFor(dir string) plugin.Runtime {
	for _, rt := range e.runtimes {
		if rt.Match(dir) {
			return rt
		}
	}
	return nil
}

// inspect loads and validates one candidate directory.
func (e *Engine) inspect(ctx context.Context, rt plugin.Runtime, dir string) (candidate, string, *Error) {
	mod, err := rt.Load(ctx, dir)
	if err != nil {
		if errors.Is(err, plugin.ErrInvalidManifest) {
			return candidate{}, "", &Error{FeaturePath: dir, Type: ErrorValidation, Message: err.Error(), Err: err}
		}
		return candidate{}, "", &Error{FeaturePath: dir, Type: ErrorImport, Message: err.Error(), Err: err}
	}

	if mod.Legacy {
		manifest := plugin.LegacyManifest(dir)
		entry := legacyEntry(manifest.Name)
		if mod.Entry != nil && mod.Entry.Valid() {
			entry = *mod.Entry
		}
		warning := fmt.Sprintf("feature %q uses the legacy plugin format (%s without a manifest); a default manifest was used",
			manifest.Name, mod.Source)
		return candidate{manifest: manifest, entry: entry, path: dir}, warning, nil
	}

	if mod.Manifest == nil {
		return candidate{}, "", &Error{
			FeaturePath: dir,
			Type:        ErrorValidation,
			Message:     fmt.Sprintf("Missing MANIFEST definition in %s", mod.Source),
			Err:         plugin.ErrMissingManifest,
		}
	}

	if mod.Entry == nil || !mod.Entry.Valid() {
		return candidate{}, "", &Error{
			FeaturePath: dir,
			Type:        ErrorValidation,
			Message:     fmt.Sprintf("Missing run function in %s", mod.Source),
			Err:         plugin.ErrMissingRun,
		}
	}

	if err := mod.Manifest.Validate(); err != nil {
		return candidate{}, "", &Error{
			FeaturePath: dir,
			Type:        ErrorValidation,
			Message:     validationMessage(mod.Source, err),
			Err:         err,
		}
	}

	return candidate{manifest: mod.Manifest.Clone(), entry: *mod.Entry, path: dir}, "", nil
}

// validationMessage renders a manifest validation failure for humans.
func validationMessage(source string, err error) string {
	var fe *plugin.FieldError
	if errors.As(err, &fe) {
		switch {
		case errors.Is(fe.Err, plugin.ErrMissingField):
			return fmt.Sprintf("Missing required manifest field %q in %s", fe.Field, source)
		case errors.Is(fe.Err, plugin.ErrUnknownCategory):
			return fmt.Sprintf("Invalid manifest field %q in %s: unknown category %q", fe.Field, source, fe.Value)
		}
	}
	return fmt.Sprintf("Invalid manifest in %s: %v", source, err)
}

// legacyEntry is used for legacy modules that define no run function.
func legacyEntry(name string) plugin.Entry {
	return plugin.Blocking(func(context.Context, *plugin.Context) (plugin.Result, error) {
		return plugin.Result{}, fmt.Errorf("legacy feature %q defines no run function", name)
	})
}
