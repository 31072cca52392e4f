package builtin

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/workbench/internal/plugin"
)

func TestNames(t *testing.T) {
	names := Names()
	assert.Contains(t, names, "echo")
	assert.Contains(t, names, "heartbeat")
	assert.IsIncreasing(t, names)
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("teleport")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "teleport")
}

func TestRegisterOverrides(t *testing.T) {
	Register("test-noop", func(map[string]any) (plugin.Entry, error) {
		return plugin.Blocking(func(context.Context, *plugin.Context) (plugin.Result, error) {
			return plugin.OK("noop", nil), nil
		}), nil
	})

	factory, err := Lookup("test-noop")
	require.NoError(t, err)
	entry, err := factory(nil)
	require.NoError(t, err)
	assert.True(t, entry.Valid())
}

func TestEcho(t *testing.T) {
	factory, err := Lookup("echo")
	require.NoError(t, err)

	entry, err := factory(map[string]any{"message": "hello"})
	require.NoError(t, err)
	require.Equal(t, plugin.EntryBlocking, entry.Kind)

	var out bytes.Buffer
	res, err := entry.Call(context.Background(), &plugin.Context{Console: &out})
	require.NoError(t, err)
	assert.Equal(t, plugin.OK("hello", map[string]any{"length": 5}), res)
	assert.Equal(t, "hello\n", out.String())

	res, err = entry.Call(context.Background(), &plugin.Context{Config: map[string]any{"message": "override"}})
	require.NoError(t, err)
	assert.Equal(t, "override", res.Message)
}

func TestEchoErrors(t *testing.T) {
	_, err := newEcho(map[string]any{"message": 3})
	assert.Error(t, err)

	entry, err := newEcho(nil)
	require.NoError(t, err)
	_, err = entry.Call(context.Background(), nil)
	assert.Error(t, err)
}

func TestHeartbeat(t *testing.T) {
	entry, err := newHeartbeat(map[string]any{"beats": int64(2)})
	require.NoError(t, err)
	require.Equal(t, plugin.EntrySuspending, entry.Kind)

	var out bytes.Buffer
	ctx := context.Background()
	task, err := entry.Start(ctx, &plugin.Context{Console: &out})
	require.NoError(t, err)

	done, _, err := task.Resume(ctx)
	require.NoError(t, err)
	assert.False(t, done)

	done, res, err := task.Resume(ctx)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, plugin.OK("2 beats", map[string]any{"beats": 2}), res)
	assert.Equal(t, "beat 1/2\nbeat 2/2\n", out.String())
}

func TestHeartbeatParams(t *testing.T) {
	tests := []struct {
		name    string
		params  map[string]any
		wantErr bool
	}{
		{"defaults", nil, false},
		{"float beats", map[string]any{"beats": 4.0}, false},
		{"zero beats", map[string]any{"beats": 0}, true},
		{"fractional beats", map[string]any{"beats": 1.5}, true},
		{"string interval", map[string]any{"interval_ms": "fast"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newHeartbeat(tt.params)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestHeartbeatCancelled(t *testing.T) {
	entry, err := newHeartbeat(map[string]any{"beats": 2, "interval_ms": 60_000})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	task, err := entry.Start(ctx, nil)
	require.NoError(t, err)

	done, _, err := task.Resume(ctx)
	require.NoError(t, err)
	require.False(t, done)

	cancel()
	done, _, err = task.Resume(ctx)
	assert.True(t, done)
	assert.ErrorIs(t, err, context.Canceled)
}
