package plugin

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Manifest describes a feature's metadata and requirements.
type Manifest struct {
	// Identity
	Name        string `yaml:"name"`         // Unique identifier (e.g., "summarize")
	DisplayName string `yaml:"display_name"` // Human-readable name
	Description string `yaml:"description"`  // Short description

	// Display hints
	Icon     string   `yaml:"icon"`     // Short symbol shown next to the name
	Color    string   `yaml:"color"`    // Opaque color hint for the UI
	Category Category `yaml:"category"` // Menu group

	// Flags
	RequiresAPIKey bool `yaml:"requires_api_key"`
	Enabled        bool `yaml:"enabled"`

	// Requirements
	Dependencies []string `yaml:"dependencies"` // Features that must load first
}

// Required manifest fields, in validation order.
const (
	FieldName        = "name"
	FieldDisplayName = "display_name"
	FieldDescription = "description"
	FieldIcon        = "icon"
	FieldColor       = "color"
	FieldCategory    = "category"
)

// Legacy manifest defaults.
const (
	legacyIcon  = "📦"
	legacyColor = "white"
)

// Validate checks that every required field is present and the category is known.
func (m *Manifest) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{FieldName, m.Name},
		{FieldDisplayName, m.DisplayName},
		{FieldDescription, m.Description},
		{FieldIcon, m.Icon},
		{FieldColor, m.Color},
		{FieldCategory, string(m.Category)},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &FieldError{Field: r.field, Err: ErrMissingField}
		}
	}

	if !m.Category.Valid() {
		return &FieldError{Field: FieldCategory, Value: string(m.Category), Err: ErrUnknownCategory}
	}

	for i, dep := range m.Dependencies {
		if strings.TrimSpace(dep) == "" {
			return &FieldError{Field: fmt.Sprintf("dependencies[%d]", i+1), Err: ErrMissingField}
		}
	}

	return nil
}

// LegacyManifest synthesizes the manifest of a plugin that ships no manifest.
// The name is the directory name; the feature is an enabled utility with no dependencies.
func LegacyManifest(dir string) Manifest {
	name := filepath.Base(dir)
	display := displayNameFor(name)
	return Manifest{
		Name:        name,
		DisplayName: display,
		Description: fmt.Sprintf("%s (legacy plugin)", display),
		Icon:        legacyIcon,
		Color:       legacyColor,
		Category:    CategoryUtility,
		Enabled:     true,
	}
}

// displayNameFor turns "prompt_library" into "Prompt Library".
func displayNameFor(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToTitle(r)) + w[size:]
	}
	if len(words) == 0 {
		return name
	}
	return strings.Join(words, " ")
}

// HasDependency returns true if the manifest lists name as a dependency.
func (m *Manifest) HasDependency(name string) bool {
	for _, d := range m.Dependencies {
		if d == name {
			return true
		}
	}
	return false
}

// String returns a string representation of the manifest.
func (m *Manifest) String() string {
	display := m.DisplayName
	if display == "" {
		display = m.Name
	}
	return fmt.Sprintf("%s [%s]", display, m.Category)
}

// Clone creates a deep copy of the manifest.
func (m *Manifest) Clone() Manifest {
	clone := *m
	if m.Dependencies != nil {
		clone.Dependencies = make([]string, len(m.Dependencies))
		copy(clone.Dependencies, m.Dependencies)
	}
	return clone
}

// FieldError reports a manifest field that failed validation.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%v: %s=%q", e.Err, e.Field, e.Value)
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Field)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
