package plugin

// Feature is a validated, registrable plugin. It is immutable once built.
type Feature struct {
	manifest   Manifest
	entry      Entry
	modulePath string
}

// NewFeature creates a feature from a validated manifest and its entry point.
func NewFeature(manifest Manifest, entry Entry, modulePath string) *Feature {
	return &Feature{
		manifest:   manifest.Clone(),
		entry:      entry,
		modulePath: modulePath,
	}
}

// Name returns the feature name.
func (f *Feature) Name() string {
	return f.manifest.Name
}

// Manifest returns a copy of the feature manifest.
func (f *Feature) Manifest() Manifest {
	return f.manifest.Clone()
}

// Category returns the feature category.
func (f *Feature) Category() Category {
	return f.manifest.Category
}

// Entry returns the feature entry point.
func (f *Feature) Entry() Entry {
	return f.entry
}

// ModulePath returns the directory the feature was loaded from.
func (f *Feature) ModulePath() string {
	return f.modulePath
}

// String returns a string representation of the feature.
func (f *Feature) String() string {
	return f.manifest.String()
}
