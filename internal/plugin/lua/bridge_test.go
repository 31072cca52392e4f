package lua

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	glua "github.com/yuin/gopher-lua"
)

func TestBridgeToGoValue(t *testing.T) {
	state := NewState()
	defer state.Close()

	require.NoError(t, state.DoString(`
		value = {
			name = "test",
			count = 3,
			ratio = 0.5,
			on = true,
			list = {"a", "b"},
			nested = { deep = 1 },
		}
	`))

	b := NewBridge(state.L)
	got := b.ToGoValue(state.Global("value"))

	assert.Equal(t, map[string]any{
		"name":   "test",
		"count":  int64(3),
		"ratio":  0.5,
		"on":     true,
		"list":   []any{"a", "b"},
		"nested": map[string]any{"deep": int64(1)},
	}, got)
}

func TestBridgeToGoValueSparseArray(t *testing.T) {
	state := NewState()
	defer state.Close()

	require.NoError(t, state.DoString(`value = { [1] = "a", [3] = "c" }`))

	got := NewBridge(state.L).ToGoValue(state.Global("value"))
	assert.Equal(t, map[string]any{"1": "a", "3": "c"}, got)
}

func TestBridgeToGoValueCycle(t *testing.T) {
	state := NewState()
	defer state.Close()

	require.NoError(t, state.DoString(`value = { name = "loop" }; value.self = value`))

	got := NewBridge(state.L).ToGoValue(state.Global("value"))
	assert.Equal(t, map[string]any{"name": "loop", "self": nil}, got)
}

func TestBridgeToLuaValue(t *testing.T) {
	state := NewState()
	defer state.Close()
	b := NewBridge(state.L)

	assert.Equal(t, glua.LNil, b.ToLuaValue(nil))
	assert.Equal(t, glua.LTrue, b.ToLuaValue(true))
	assert.Equal(t, glua.LNumber(7), b.ToLuaValue(7))
	assert.Equal(t, glua.LString("hi"), b.ToLuaValue("hi"))

	tbl, ok := b.ToLuaValue(map[string]any{
		"tags":   []string{"x", "y"},
		"limits": map[string]int{"max": 10},
	}).(*glua.LTable)
	require.True(t, ok)

	back := b.ToGoValue(tbl)
	assert.Equal(t, map[string]any{
		"tags":   []any{"x", "y"},
		"limits": map[string]any{"max": int64(10)},
	}, back)
}

func TestBridgeOpaque(t *testing.T) {
	state := NewState()
	defer state.Close()
	b := NewBridge(state.L)

	type client struct{ name string }
	c := &client{name: "llm"}

	lv := b.ToLuaValue(struct{ c *client }{c})
	ud, ok := lv.(*glua.LUserData)
	require.True(t, ok)
	assert.Equal(t, struct{ c *client }{c}, ud.Value)

	assert.Equal(t, c, b.ToGoValue(b.Opaque(c)))
}

func TestBridgeFieldHelpers(t *testing.T) {
	state := NewState()
	defer state.Close()
	b := NewBridge(state.L)

	require.NoError(t, state.DoString(`value = { s = "x", flag = false, n = 1 }`))
	tbl := state.Global("value").(*glua.LTable)

	s, ok := b.String(tbl, "s")
	assert.True(t, ok)
	assert.Equal(t, "x", s)

	_, ok = b.String(tbl, "n")
	assert.False(t, ok)

	flag, ok := b.Bool(tbl, "flag")
	assert.True(t, ok)
	assert.False(t, flag)

	_, ok = b.Bool(tbl, "missing")
	assert.False(t, ok)
}
