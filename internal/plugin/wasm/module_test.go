package wasm

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/dshills/workbench/internal/plugin"
	"github.com/dshills/workbench/internal/plugin/execute"
)

// constModule assembles a module exporting name as a function () -> i32
// that returns rc.
func constModule(name string, rc byte) []byte {
	mod := []byte{
		0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00, // magic, version
		0x01, 0x05, 0x01, 0x60, 0x00, 0x01, 0x7f, // type: () -> i32
		0x03, 0x02, 0x01, 0x00, // function 0 has type 0
	}
	export := append([]byte{0x01, byte(len(name))}, name...)
	export = append(export, 0x00, 0x00) // func index 0
	mod = append(mod, 0x07, byte(len(export)))
	mod = append(mod, export...)
	return append(mod,
		0x0a, 0x06, 0x01, 0x04, 0x00, 0x41, rc, 0x0b, // i32.const rc; end
	)
}

func writeModule(t *testing.T, name string, rc byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name+".wasm")
	require.NoError(t, os.WriteFile(path, constModule(name, rc), 0o644))
	return path
}

func loadModule(t *testing.T, path, function string) *Module {
	t.Helper()
	m, err := Load(context.Background(), path, function)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close(context.Background()) })
	return m
}

func wasmFeature(m *Module, name string) *plugin.Feature {
	manifest := plugin.Manifest{
		Name:        name,
		DisplayName: "Wasm " + name,
		Description: "d",
		Icon:        "W",
		Color:       "purple",
		Category:    plugin.CategoryUtility,
		Enabled:     true,
	}
	return plugin.NewFeature(manifest, m.Entry(), m.Path())
}

func TestModuleRunSuccess(t *testing.T) {
	m := loadModule(t, writeModule(t, "run", 0), "")
	assert.True(t, m.Entry().Valid())

	res := execute.New().Execute(context.Background(), wasmFeature(m, "ok"),
		&plugin.Context{Feature: "ok", Config: map[string]any{"depth": 2}})
	assert.Equal(t, plugin.OK("", nil), res)
}

func TestModuleRunNonZeroExit(t *testing.T) {
	m := loadModule(t, writeModule(t, "check", 1), "check")

	_, err := m.Entry().Call(context.Background(), &plugin.Context{Feature: "bad"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-zero exit code: 1")

	res := execute.New().Execute(context.Background(), wasmFeature(m, "bad"), &plugin.Context{Feature: "bad"})
	assert.False(t, res.Success)
	assert.Equal(t, "Wasm bad failed", res.Message)
	assert.Contains(t, res.Error, "non-zero exit code")
}

func TestLoadMissingExport(t *testing.T) {
	_, err := Load(context.Background(), writeModule(t, "other", 0), "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"run"`)
}

func TestRequest(t *testing.T) {
	input, err := Request(&plugin.Context{
		Feature: "summarize",
		Config:  map[string]any{"model": "small", "depth": 2, "tags": []string{"a", "b"}},
	})
	require.NoError(t, err)
	require.True(t, gjson.ValidBytes(input))

	doc := gjson.ParseBytes(input)
	assert.Equal(t, "summarize", doc.Get("feature").String())
	assert.Equal(t, "small", doc.Get("config.model").String())
	assert.Equal(t, int64(2), doc.Get("config.depth").Int())
	assert.Equal(t, "b", doc.Get("config.tags.1").String())

	bare, err := Request(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"feature": ""}`, string(bare))

	noConfig, err := Request(&plugin.Context{Feature: "x"})
	require.NoError(t, err)
	assert.False(t, gjson.GetBytes(noConfig, "config").Exists())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "absent.wasm"), "")
	assert.Error(t, err)
}

func TestLoadInvalidModule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.wasm")
	require.NoError(t, os.WriteFile(path, []byte("not wasm at all"), 0o644))

	_, err := Load(context.Background(), path, "run")
	assert.Error(t, err)
}

func TestDecodeResult(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    plugin.Result
		wantErr bool
	}{
		{
			name: "empty",
			want: plugin.Result{Success: true},
		},
		{
			name:   "full",
			output: `{"success": true, "message": "done", "data": {"count": 2}}`,
			want:   plugin.Result{Success: true, Message: "done", Data: map[string]any{"count": 2.0}},
		},
		{
			name:   "failure",
			output: `{"success": false, "message": "no", "error": "quota"}`,
			want:   plugin.Result{Message: "no", Error: "quota"},
		},
		{
			name:   "error without flag",
			output: `{"error": "bad"}`,
			want:   plugin.Result{Error: "bad"},
		},
		{
			name:   "message without flag",
			output: `{"message": "ok"}`,
			want:   plugin.Result{Success: true, Message: "ok"},
		},
		{
			name:    "not json",
			output:  `{oops`,
			wantErr: true,
		},
		{
			name:    "not an object",
			output:  `[1, 2]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeResult([]byte(tt.output))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
