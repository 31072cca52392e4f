package plugin

import (
	"fmt"
	"strings"
)

// Category groups features for display.
type Category string

// Feature categories.
const (
	CategoryCore    Category = "core"
	CategoryAI      Category = "ai"
	CategoryStorage Category = "storage"
	CategoryExport  Category = "export"
	CategoryUtility Category = "utility"
)

// Categories returns every category in display order.
func Categories() []Category {
	return []Category{
		CategoryCore,
		CategoryAI,
		CategoryStorage,
		CategoryExport,
		CategoryUtility,
	}
}

// ParseCategory parses a category name, ignoring case and surrounding space.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryCore, CategoryAI, CategoryStorage, CategoryExport, CategoryUtility:
		return true
	default:
		return false
	}
}

// Label returns the display label of the category.
func (c Category) Label() string {
	switch c {
	case CategoryCore:
		return "Core"
	case CategoryAI:
		return "AI"
	case CategoryStorage:
		return "Storage"
	case CategoryExport:
		return "Export"
	case CategoryUtility:
		return "Utility"
	default:
		return "Unknown"
	}
}

// String returns the category name.
func (c Category) String() string {
	return string(c)
}
