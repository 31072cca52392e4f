package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/workbench/internal/plugin"
	"github.com/dshills/workbench/internal/plugin/registry"
)

const echoDescriptor = `manifest:
  name: echo
  display_name: Echo
  description: Prints a message
  icon: E
  color: cyan
  category: utility
run:
  builtin: echo
  with:
    message: hi there
`

func setup(t *testing.T, plugins map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for dir, doc := range plugins {
		p := filepath.Join(root, dir)
		require.NoError(t, os.MkdirAll(p, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(p, "manifest.yaml"), []byte(doc), 0o644))
	}
	t.Setenv("WORKBENCH_HISTORY_PATH", filepath.Join(t.TempDir(), "history.db"))
	t.Setenv("WORKBENCH_LOG_LEVEL", "error")
	return root
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.toml")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestListCommand(t *testing.T) {
	root := setup(t, map[string]string{"echo": echoDescriptor})

	out, err := execute(t, "--plugins", root, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "echo")
	assert.Contains(t, out, "Prints a message")

	out, err = execute(t, "--plugins", root, "list", "--category", "ai")
	require.NoError(t, err)
	assert.NotContains(t, out, "Prints a message")

	_, err = execute(t, "--plugins", root, "list", "--category", "bogus")
	assert.Error(t, err)
}

func TestRunAndHistoryCommands(t *testing.T) {
	root := setup(t, map[string]string{"echo": echoDescriptor})

	out, err := execute(t, "--plugins", root, "run", "echo")
	require.NoError(t, err)
	assert.Contains(t, out, "hi there")
	assert.Contains(t, out, "success")

	out, err = execute(t, "--plugins", root, "history", "echo")
	require.NoError(t, err)
	assert.Contains(t, out, "echo")
	assert.Contains(t, out, "ok")

	_, err = execute(t, "--plugins", root, "run", "missing")
	assert.Error(t, err)
}

func TestCheckCommand(t *testing.T) {
	root := setup(t, map[string]string{
		"echo":   echoDescriptor,
		"broken": "manifest:\n  name: broken\nrun:\n  builtin: echo\n",
	})

	out, err := execute(t, "--plugins", root, "check")
	assert.ErrorIs(t, err, errPluginsFailed)
	assert.Contains(t, out, "1 features loaded, 1 errors")
	assert.Contains(t, out, "validation")
}

func TestCheckCleanTree(t *testing.T) {
	root := setup(t, map[string]string{"echo": echoDescriptor})

	out, err := execute(t, "--plugins", root, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "1 features loaded, 0 errors, 0 warnings")
}

func listFeature(name string, c plugin.Category, api, enabled bool) *plugin.Feature {
	return plugin.NewFeature(plugin.Manifest{
		Name:           name,
		DisplayName:    name,
		Description:    "d",
		Icon:           "*",
		Color:          "white",
		Category:       c,
		RequiresAPIKey: api,
		Enabled:        enabled,
	}, plugin.Blocking(nil), "")
}

func names(features []*plugin.Feature) []string {
	var out []string
	for _, f := range features {
		out = append(out, f.Name())
	}
	return out
}

func TestListSelectFeatures(t *testing.T) {
	reg := registry.New()
	reg.Insert(listFeature("chat", plugin.CategoryAI, true, true))
	reg.Insert(listFeature("export", plugin.CategoryExport, false, true))
	reg.Insert(listFeature("draft", plugin.CategoryAI, true, false))
	reg.Insert(listFeature("notes", plugin.CategoryAI, false, true))

	tests := []struct {
		name string
		opts listOptions
		want []string
	}{
		{"all", listOptions{}, []string{"chat", "export", "draft", "notes"}},
		{"category", listOptions{category: "AI"}, []string{"chat", "draft", "notes"}},
		{"api", listOptions{apiOnly: true}, []string{"chat", "draft"}},
		{"enabled", listOptions{enabledOnly: true}, []string{"chat", "export", "notes"}},
		{"category and api", listOptions{category: "ai", apiOnly: true}, []string{"chat", "draft"}},
		{"every filter", listOptions{category: "ai", apiOnly: true, enabledOnly: true}, []string{"chat"}},
		{"empty category", listOptions{category: "storage"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.opts.selectFeatures(reg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}

	_, err := listOptions{category: "bogus"}.selectFeatures(reg)
	assert.ErrorIs(t, err, plugin.ErrUnknownCategory)
}

func TestListEnabledFlag(t *testing.T) {
	off := "manifest:\n  name: quiet\n  display_name: Quiet\n  description: Switched off\n  icon: Q\n  color: gray\n  category: utility\n  enabled: false\nrun:\n  builtin: echo\n"
	root := setup(t, map[string]string{"echo": echoDescriptor, "quiet": off})

	out, err := execute(t, "--plugins", root, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Switched off")

	out, err = execute(t, "--plugins", root, "list", "--enabled")
	require.NoError(t, err)
	assert.Contains(t, out, "Prints a message")
	assert.NotContains(t, out, "Switched off")
}
