package plugin

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validManifest() Manifest {
	return Manifest{
		Name:        "summarize",
		DisplayName: "Summarize",
		Description: "Summarizes the conversation",
		Icon:        "S",
		Color:       "blue",
		Category:    CategoryAI,
		Enabled:     true,
	}
}

func TestManifestValidate(t *testing.T) {
	m := validManifest()
	require.NoError(t, m.Validate())

	tests := []struct {
		name   string
		mutate func(*Manifest)
		field  string
		want   error
	}{
		{"missing name", func(m *Manifest) { m.Name = "" }, FieldName, ErrMissingField},
		{"blank display name", func(m *Manifest) { m.DisplayName = "  " }, FieldDisplayName, ErrMissingField},
		{"missing description", func(m *Manifest) { m.Description = "" }, FieldDescription, ErrMissingField},
		{"missing icon", func(m *Manifest) { m.Icon = "" }, FieldIcon, ErrMissingField},
		{"missing color", func(m *Manifest) { m.Color = "" }, FieldColor, ErrMissingField},
		{"missing category", func(m *Manifest) { m.Category = "" }, FieldCategory, ErrMissingField},
		{"unknown category", func(m *Manifest) { m.Category = "games" }, FieldCategory, ErrUnknownCategory},
		{"empty dependency", func(m *Manifest) { m.Dependencies = []string{"a", ""} }, "dependencies[2]", ErrMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validManifest()
			tt.mutate(&m)

			err := m.Validate()
			require.ErrorIs(t, err, tt.want)

			var fe *FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestManifestValidateReportsFirstMissingField(t *testing.T) {
	var m Manifest
	var fe *FieldError
	require.ErrorAs(t, m.Validate(), &fe)
	assert.Equal(t, FieldName, fe.Field)
}

func TestFieldErrorString(t *testing.T) {
	err := &FieldError{Field: FieldCategory, Value: "games", Err: ErrUnknownCategory}
	assert.Equal(t, `manifest: unknown category: category="games"`, err.Error())

	err = &FieldError{Field: FieldIcon, Err: ErrMissingField}
	assert.Equal(t, "manifest: missing required field: icon", err.Error())
}

func TestLegacyManifest(t *testing.T) {
	m := LegacyManifest("/plugins/prompt_library")

	assert.Equal(t, "prompt_library", m.Name)
	assert.Equal(t, "Prompt Library", m.DisplayName)
	assert.Equal(t, "Prompt Library (legacy plugin)", m.Description)
	assert.Equal(t, CategoryUtility, m.Category)
	assert.True(t, m.Enabled)
	assert.Empty(t, m.Dependencies)
	assert.NoError(t, m.Validate())
}

func TestLegacyManifestNonASCIIName(t *testing.T) {
	tests := []struct {
		dir  string
		want string
	}{
		{"écrire_notes", "Écrire Notes"},
		{"über-sync", "Über Sync"},
		{"日記", "日記"},
		{"a", "A"},
	}
	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			m := LegacyManifest(filepath.Join("/plugins", tt.dir))
			assert.Equal(t, tt.want, m.DisplayName)
			assert.True(t, utf8.ValidString(m.DisplayName))
			assert.Equal(t, tt.want+" (legacy plugin)", m.Description)
		})
	}
}

func TestManifestClone(t *testing.T) {
	m := validManifest()
	m.Dependencies = []string{"history"}

	c := m.Clone()
	c.Dependencies[0] = "changed"

	assert.Equal(t, "history", m.Dependencies[0])
	assert.True(t, m.HasDependency("history"))
	assert.False(t, m.HasDependency("changed"))
}

func TestFeatureIsImmutable(t *testing.T) {
	m := validManifest()
	m.Dependencies = []string{"history"}
	f := NewFeature(m, Blocking(nil), "/plugins/summarize")

	m.Dependencies[0] = "other"
	got := f.Manifest()
	got.Dependencies[0] = "again"

	assert.Equal(t, []string{"history"}, f.Manifest().Dependencies)
	assert.Equal(t, "summarize", f.Name())
	assert.Equal(t, CategoryAI, f.Category())
	assert.Equal(t, "/plugins/summarize", f.ModulePath())
	assert.Equal(t, "Summarize [ai]", f.String())
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("  Storage ")
	require.NoError(t, err)
	assert.Equal(t, CategoryStorage, c)
	assert.Equal(t, "Storage", c.Label())

	_, err = ParseCategory("games")
	assert.ErrorIs(t, err, ErrUnknownCategory)

	assert.Len(t, Categories(), 5)
	for _, c := range Categories() {
		assert.True(t, c.Valid(), c)
	}
}

func TestResultNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Result
		want Result
	}{
		{"success drops error", Result{Success: true, Message: "m", Error: "e"}, Result{Success: true, Message: "m"}},
		{"failure keeps error", Result{Message: "m", Error: "e"}, Result{Message: "m", Error: "e"}},
		{"failure borrows message", Result{Message: "m"}, Result{Message: "m", Error: "m"}},
		{"bare failure", Result{}, Result{Error: "feature reported failure"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestResultConstructors(t *testing.T) {
	assert.Equal(t, Result{Success: true, Message: "done", Data: 3}, OK("done", 3))
	assert.Equal(t, Result{Message: "X failed", Error: "boom"}, Fail("X failed", errors.New("boom")))
	assert.Equal(t, "unknown error", Fail("X failed", nil).Error)
}

func TestEntryValid(t *testing.T) {
	call := func(context.Context, *Context) (Result, error) { return OK("", nil), nil }
	start := func(context.Context, *Context) (Task, error) { return NewStepTask(), nil }

	assert.True(t, Blocking(call).Valid())
	assert.True(t, Suspending(start).Valid())
	assert.False(t, Blocking(nil).Valid())
	assert.False(t, Entry{Kind: EntrySuspending, Call: call}.Valid())
	assert.False(t, Entry{Kind: EntryKind(9)}.Valid())
	assert.Equal(t, "suspending", EntrySuspending.String())
}

func TestStepTask(t *testing.T) {
	ctx := context.Background()
	var ran []int
	step := func(i int) func(context.Context) (Result, error) {
		return func(context.Context) (Result, error) {
			ran = append(ran, i)
			return OK("step", i), nil
		}
	}

	task := NewStepTask(step(1), step(2))

	done, _, err := task.Resume(ctx)
	require.NoError(t, err)
	assert.False(t, done)

	done, res, err := task.Resume(ctx)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, 2, res.Data)
	assert.Equal(t, []int{1, 2}, ran)

	_, _, err = NewStepTask().Resume(ctx)
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestContextPrintAndSettings(t *testing.T) {
	var nilCtx *Context
	nilCtx.Print("ignored")
	assert.Nil(t, nilCtx.Settings())

	var buf bytes.Buffer
	fc := &Context{Console: &buf, Config: map[string]any{"k": "v"}}
	fc.Print("hello")
	assert.Equal(t, "hello", buf.String())
	assert.Equal(t, map[string]any{"k": "v"}, fc.Settings())

	(&Context{}).Print("no console")
	assert.Nil(t, (&Context{Config: "not a map"}).Settings())
}
