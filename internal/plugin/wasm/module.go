// Package wasm runs features compiled to WebAssembly through Extism.
//
// The exported function receives a JSON document
//
//	{"feature": "<name>", "config": {...}}
//
// and writes back a JSON object with success, message, data and error keys.
package wasm

import (
	"context"
	"fmt"
	"sync"

	extism "github.com/extism/go-sdk"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/workbench/internal/plugin"
)

// DefaultFunction is the export called when a descriptor names none.
const DefaultFunction = "run"

// Module is one instantiated Wasm plugin.
// Extism plugins are not safe for concurrent calls, so calls are serialized.
type Module struct {
	mu       sync.Mutex
	plugin   *extism.Plugin
	path     string
	function string
}

// Load compiles and instantiates the Wasm file at path.
func Load(ctx context.Context, path, function string) (*Module, error) {
	if function == "" {
		function = DefaultFunction
	}

	manifest := extism.Manifest{
		Wasm: []extism.Wasm{
			extism.WasmFile{Path: path},
		},
	}
	config := extism.PluginConfig{
		EnableWasi: true,
	}

	p, err := extism.NewPlugin(ctx, manifest, config, []extism.HostFunction{})
	if err != nil {
		return nil, fmt.Errorf("failed to create extism plugin: %w", err)
	}

	if !p.FunctionExists(function) {
		_ = p.Close(ctx)
		return nil, fmt.Errorf("wasm module %s does not export %q", path, function)
	}

	return &Module{plugin: p, path: path, function: function}, nil
}

// Entry returns a blocking entry point calling the module's function.
func (m *Module) Entry() plugin.Entry {
	return plugin.Blocking(m.call)
}

// Request builds the JSON document passed to the module's function.
// config is omitted when the feature has no settings.
func Request(fc *plugin.Context) ([]byte, error) {
	var feature string
	var config any
	if fc != nil {
		feature = fc.Feature
		config = fc.Config
	}

	input, err := sjson.SetBytes([]byte(`{}`), "feature", feature)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	if config != nil {
		input, err = sjson.SetBytes(input, "config", config)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request config: %w", err)
		}
	}
	return input, nil
}

func (m *Module) call(ctx context.Context, fc *plugin.Context) (plugin.Result, error) {
	input, err := Request(fc)
	if err != nil {
		return plugin.Result{}, err
	}

	m.mu.Lock()
	exitCode, output, err := m.plugin.CallWithContext(ctx, m.function, input)
	m.mu.Unlock()

	if err != nil {
		return plugin.Result{}, fmt.Errorf("failed to call wasm function: %w", err)
	}
	if exitCode != 0 {
		return plugin.Result{}, fmt.Errorf("%s returned non-zero exit code: %d", m.function, exitCode)
	}

	return DecodeResult(output)
}

// DecodeResult parses a module's JSON output. Empty output is success.
func DecodeResult(output []byte) (plugin.Result, error) {
	if len(output) == 0 {
		return plugin.OK("", nil), nil
	}
	if !gjson.ValidBytes(output) {
		return plugin.Result{}, fmt.Errorf("wasm output is not valid JSON")
	}

	doc := gjson.ParseBytes(output)
	if !doc.IsObject() {
		return plugin.Result{}, fmt.Errorf("wasm output must be a JSON object, got %s", doc.Type)
	}

	res := plugin.Result{
		Message: doc.Get("message").String(),
		Error:   doc.Get("error").String(),
	}
	if data := doc.Get("data"); data.Exists() {
		res.Data = data.Value()
	}
	if success := doc.Get("success"); success.Exists() {
		res.Success = success.Bool()
	} else {
		res.Success = res.Error == ""
	}
	return res, nil
}

// Path returns the Wasm file path.
func (m *Module) Path() string {
	return m.path
}

// Close releases the plugin instance.
func (m *Module) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.plugin.Close(ctx)
}
