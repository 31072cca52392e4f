// Package registry indexes the features produced by a discovery pass.
package registry

import (
	"context"
	"slices"
	"sync"

	"github.com/dshills/workbench/internal/logging"
	"github.com/dshills/workbench/internal/plugin"
	"github.com/dshills/workbench/internal/plugin/discovery"
)

// Discoverer produces a discovery result. *discovery.Engine implements it.
type Discoverer interface {
	Discover(ctx context.Context) discovery.Result
}

// Registry maps feature names to features.
//
// Load is the write phase; queries may run concurrently once it returns.
// The first feature registered under a name keeps it for the registry's
// lifetime.
type Registry struct {
	mu sync.RWMutex

	// Features by name
	features map[string]*plugin.Feature

	// Registration order (for deterministic iteration)
	order []string

	// Most recent discovery result
	last   discovery.Result
	loaded bool
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		features: make(map[string]*plugin.Feature),
		order:    make([]string, 0),
	}
}

// Load runs discovery, stores the result and registers every feature.
// The result is returned unchanged.
func (r *Registry) Load(ctx context.Context, d Discoverer) discovery.Result {
	logger := logging.Component(ctx, "registry")

	result := d.Discover(ctx)

	r.mu.Lock()
	r.last = result
	r.loaded = true
	r.mu.Unlock()

	for _, f := range result.Features {
		if !r.Insert(f) {
			logger.Warn("feature already registered, keeping first", "feature", f.Name(), "path", f.ModulePath())
		}
	}

	logger.Info("registry loaded",
		"features", r.Len(),
		"errors", len(result.Errors),
		"warnings", len(result.Warnings))

	return result
}

// Insert registers f. It returns false, leaving the existing entry in
// place, if the name is already taken.
func (r *Registry) Insert(f *plugin.Feature) bool {
	if f == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.features[f.Name()]; exists {
		return false
	}
	r.features[f.Name()] = f
	r.order = append(r.order, f.Name())
	return true
}

// Get returns the feature registered under name.
func (r *Registry) Get(name string) (*plugin.Feature, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.features[name]
	return f, ok
}

// Len returns the number of registered features.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// ListAll returns every feature in registration order.
func (r *Registry) ListAll() []*plugin.Feature {
	return r.filter(func(*plugin.Feature) bool { return true })
}

// ListByCategory returns the features in category c.
func (r *Registry) ListByCategory(c plugin.Category) []*plugin.Feature {
	return r.filter(func(f *plugin.Feature) bool { return f.Category() == c })
}

// ListEnabled returns the enabled features.
func (r *Registry) ListEnabled() []*plugin.Feature {
	return r.filter(func(f *plugin.Feature) bool { return f.Manifest().Enabled })
}

// ListRequiringAPI returns the features that need an API key.
func (r *Registry) ListRequiringAPI() []*plugin.Feature {
	return r.filter(func(f *plugin.Feature) bool { return f.Manifest().RequiresAPIKey })
}

// CategoriesWithFeatures returns the non-empty categories in display order.
func (r *Registry) CategoriesWithFeatures() []plugin.Category {
	r.mu.RLock()
	defer r.mu.RUnlock()

	present := make(map[plugin.Category]bool)
	for _, f := range r.features {
		present[f.Category()] = true
	}

	cats := make([]plugin.Category, 0, len(present))
	for _, c := range plugin.Categories() {
		if present[c] {
			cats = append(cats, c)
		}
	}
	return cats
}

// HasErrors reports whether the most recent load produced errors.
func (r *Registry) HasErrors() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.last.Errors) > 0
}

// Errors returns the errors of the most recent load.
func (r *Registry) Errors() []discovery.Error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.last.Errors)
}

// Warnings returns the warnings of the most recent load.
func (r *Registry) Warnings() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.last.Warnings)
}

// Loaded reports whether Load has run.
func (r *Registry) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}

func (r *Registry) filter(keep func(*plugin.Feature) bool) []*plugin.Feature {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*plugin.Feature, 0, len(r.order))
	for _, name := range r.order {
		if f := r.features[name]; keep(f) {
			out = append(out, f)
		}
	}
	return out
}
