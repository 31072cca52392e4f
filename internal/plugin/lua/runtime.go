package lua

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/workbench/internal/logging"
	"github.com/dshills/workbench/internal/plugin"
)

// Module file names and globals.
const (
	ManifestFile = "manifest.lua"
	LegacyFile   = "service.lua"

	ManifestGlobal = "MANIFEST"
	RunGlobal      = "run"
	RunAsyncGlobal = "run_async"
)

// Runtime loads Lua feature modules. Each loaded module keeps its own
// State until Close.
type Runtime struct {
	mu     sync.Mutex
	states []*State
}

// NewRuntime creates a Lua runtime.
func NewRuntime() *Runtime {
	return &Runtime{}
}

// Name returns "lua".
func (r *Runtime) Name() string {
	return "lua"
}

// Match reports whether dir holds manifest.lua or service.lua.
func (r *Runtime) Match(dir string) bool {
	return plugin.FileExists(dir, ManifestFile) || plugin.FileExists(dir, LegacyFile)
}

// Load executes the module in dir and extracts its manifest and entry point.
func (r *Runtime) Load(ctx context.Context, dir string) (*plugin.Module, error) {
	source, legacy := ManifestFile, false
	if !plugin.FileExists(dir, ManifestFile) {
		if !plugin.FileExists(dir, LegacyFile) {
			return nil, plugin.ErrNoEntryPoint
		}
		source, legacy = LegacyFile, true
	}

	logger := logging.Component(ctx, "lua").With("path", dir, "source", source)

	state := NewState(WithModuleDir(dir))
	mod, err := r.load(state, dir, source, legacy)
	if err != nil {
		_ = state.Close()
		logger.Debug("module rejected", "error", err)
		return nil, err
	}

	r.mu.Lock()
	r.states = append(r.states, state)
	r.mu.Unlock()

	logger.Debug("module loaded", "legacy", legacy)
	return mod, nil
}

func (r *Runtime) load(state *State, dir, source string, legacy bool) (*plugin.Module, error) {
	if err := state.DoFile(filepath.Join(dir, source)); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", source, err)
	}

	mod := &plugin.Module{Source: source, Legacy: legacy}

	if !legacy {
		if mv := state.Global(ManifestGlobal); mv != lua.LNil {
			m, err := decodeManifest(mv)
			if err != nil {
				return nil, err
			}
			mod.Manifest = m
		}
	}

	entry, err := entryPoint(state)
	if err != nil {
		return nil, err
	}
	mod.Entry = entry
	return mod, nil
}

// entryPoint prefers run over run_async.
func entryPoint(state *State) (*plugin.Entry, error) {
	fn, err := state.Function(RunGlobal)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", plugin.ErrInvalidManifest, err)
	}
	if fn != nil {
		e := blockingEntry(state, fn)
		return &e, nil
	}

	fn, err = state.Function(RunAsyncGlobal)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", plugin.ErrInvalidManifest, err)
	}
	if fn != nil {
		e := suspendingEntry(state, fn)
		return &e, nil
	}
	return nil, nil
}

// Close closes every state created by Load.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, s := range r.states {
		errs = append(errs, s.Close())
	}
	r.states = nil
	return errors.Join(errs...)
}
