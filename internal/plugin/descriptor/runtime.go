// Package descriptor loads features declared in manifest.yaml.
//
// A descriptor binds a manifest to code that lives elsewhere: a builtin
// handler compiled into the binary or an exported Wasm function.
//
//	manifest:
//	  name: echo
//	  display_name: Echo
//	  description: Prints its message
//	  icon: ">"
//	  color: white
//	  category: utility
//	run:
//	  builtin: echo
//	  with:
//	    message: hello
package descriptor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/dshills/workbench/internal/logging"
	"github.com/dshills/workbench/internal/plugin"
	"github.com/dshills/workbench/internal/plugin/builtin"
	"github.com/dshills/workbench/internal/plugin/wasm"
)

// File is the descriptor file name.
const File = "manifest.yaml"

// document is the on-disk shape of a descriptor.
type document struct {
	Manifest *manifest `yaml:"manifest"`
	Run      *run      `yaml:"run"`
}

type manifest struct {
	Name           string   `yaml:"name"`
	DisplayName    string   `yaml:"display_name"`
	Description    string   `yaml:"description"`
	Icon           string   `yaml:"icon"`
	Color          string   `yaml:"color"`
	Category       string   `yaml:"category"`
	RequiresAPIKey bool     `yaml:"requires_api_key"`
	Enabled        *bool    `yaml:"enabled"`
	Dependencies   []string `yaml:"dependencies"`
}

type run struct {
	Builtin  string         `yaml:"builtin"`
	Wasm     string         `yaml:"wasm"`
	Function string         `yaml:"function"`
	With     map[string]any `yaml:"with"`
}

func (m *manifest) toManifest() *plugin.Manifest {
	enabled := true
	if m.Enabled != nil {
		enabled = *m.Enabled
	}
	return &plugin.Manifest{
		Name:           m.Name,
		DisplayName:    m.DisplayName,
		Description:    m.Description,
		Icon:           m.Icon,
		Color:          m.Color,
		Category:       plugin.Category(strings.ToLower(strings.TrimSpace(m.Category))),
		RequiresAPIKey: m.RequiresAPIKey,
		Enabled:        enabled,
		Dependencies:   m.Dependencies,
	}
}

// Runtime loads descriptor plugins. Wasm modules stay instantiated until Close.
type Runtime struct {
	mu      sync.Mutex
	modules []*wasm.Module
}

// NewRuntime creates a descriptor runtime.
func NewRuntime() *Runtime {
	return &Runtime{}
}

// Name returns "descriptor".
func (r *Runtime) Name() string {
	return "descriptor"
}

// Match reports whether dir holds manifest.yaml.
func (r *Runtime) Match(dir string) bool {
	return plugin.FileExists(dir, File)
}

// Load parses the descriptor in dir and binds its entry point.
func (r *Runtime) Load(ctx context.Context, dir string) (*plugin.Module, error) {
	logger := logging.Component(ctx, "descriptor").With("path", dir)

	data, err := os.ReadFile(filepath.Join(dir, File))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", File, err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		var typeErr *yaml.TypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: %s", plugin.ErrInvalidManifest, strings.Join(typeErr.Errors, "; "))
		}
		return nil, fmt.Errorf("failed to parse %s: %w", File, err)
	}

	mod := &plugin.Module{Source: File}
	if doc.Manifest != nil {
		mod.Manifest = doc.Manifest.toManifest()
	}

	if doc.Run != nil {
		entry, err := r.bind(ctx, dir, doc.Run)
		if err != nil {
			return nil, err
		}
		mod.Entry = entry
	}

	logger.Debug("descriptor loaded", "has_manifest", mod.Manifest != nil, "has_run", mod.Entry != nil)
	return mod, nil
}

// bind resolves the run section to an entry point.
func (r *Runtime) bind(ctx context.Context, dir string, rs *run) (*plugin.Entry, error) {
	switch {
	case rs.Builtin != "" && rs.Wasm != "":
		return nil, fmt.Errorf("%w: run declares both builtin and wasm", plugin.ErrInvalidManifest)

	case rs.Builtin != "":
		factory, err := builtin.Lookup(rs.Builtin)
		if err != nil {
			return nil, err
		}
		entry, err := factory(rs.With)
		if err != nil {
			return nil, fmt.Errorf("builtin %s: %w", rs.Builtin, err)
		}
		return &entry, nil

	case rs.Wasm != "":
		path := rs.Wasm
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		m, err := wasm.Load(ctx, path, rs.Function)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.modules = append(r.modules, m)
		r.mu.Unlock()
		entry := m.Entry()
		return &entry, nil

	default:
		return nil, nil
	}
}

// Close releases every Wasm module loaded so far.
func (r *Runtime) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, m := range r.modules {
		errs = append(errs, m.Close(ctx))
	}
	r.modules = nil
	return errors.Join(errs...)
}
