package plugin

import (
	"context"
	"os"
	"path/filepath"
)

// Module is what a Runtime produces from one plugin directory.
type Module struct {
	// Source is the file that defined the module (e.g., "manifest.lua").
	Source string

	// Manifest is nil when the module does not define one.
	Manifest *Manifest

	// Entry is nil when the module defines no run entry point.
	Entry *Entry

	// Legacy is set for modules in the pre-manifest format.
	Legacy bool
}

// Runtime loads plugin directories of one format.
//
// Load returns an error wrapping ErrInvalidManifest when the module loaded
// but its manifest could not be decoded; any other error means the module
// could not be loaded at all.
type Runtime interface {
	// Name identifies the runtime (e.g., "lua").
	Name() string

	// Match reports whether dir holds a module in this runtime's format.
	Match(dir string) bool

	// Load loads the module in dir.
	Load(ctx context.Context, dir string) (*Module, error)
}

// FileExists reports whether dir/name exists and is a regular file.
func FileExists(dir, name string) bool {
	info, err := os.Stat(filepath.Join(dir, name))
	return err == nil && info.Mode().IsRegular()
}
