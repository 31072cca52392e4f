// Package builtin holds entry points compiled into the workbench binary.
//
// A descriptor plugin can bind its manifest to one of these handlers by name
// instead of shipping code.
package builtin

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dshills/workbench/internal/plugin"
)

// Factory builds an entry point from the descriptor's parameters.
//
// Factories are registered with Register and called once per loaded
// descriptor.
type Factory func(params map[string]any) (plugin.Entry, error)

var (
	// factories stores handler factories by name
	factories = make(map[string]Factory)
	// factoriesMu protects concurrent access to the registry
	factoriesMu sync.RWMutex
)

// Register registers a handler factory under name.
//
// This should be called from init() functions in handler implementations:
//
//	func init() {
//	    Register("echo", newEcho)
//	}
func Register(name string, factory Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = factory
}

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, error) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	factory, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("no builtin handler registered under %q", name)
	}
	return factory, nil
}

// Names returns the registered handler names, sorted.
func Names() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// stringParam returns params[key] as a string, or def if absent.
func stringParam(params map[string]any, key, def string) (string, error) {
	v, ok := params[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("parameter %q must be a string, got %T", key, v)
	}
	return s, nil
}

// intParam returns params[key] as an int, or def if absent.
func intParam(params map[string]any, key string, def int) (int, error) {
	v, ok := params[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n == float64(int(n)) {
			return int(n), nil
		}
	}
	return 0, fmt.Errorf("parameter %q must be an integer, got %v", key, v)
}
