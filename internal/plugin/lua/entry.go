package lua

import (
	"context"
	"fmt"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/workbench/internal/plugin"
)

// blockingEntry calls fn once per run.
func blockingEntry(state *State, fn *lua.LFunction) plugin.Entry {
	return plugin.Blocking(func(ctx context.Context, fc *plugin.Context) (plugin.Result, error) {
		values, err := state.Call(fn, func(L *lua.LState) []lua.LValue {
			return []lua.LValue{contextTable(L, fc)}
		})
		if err != nil {
			return plugin.Result{}, err
		}
		return decodeResult(state, values)
	})
}

// suspendingEntry runs fn as a coroutine per run.
func suspendingEntry(state *State, fn *lua.LFunction) plugin.Entry {
	return plugin.Suspending(func(ctx context.Context, fc *plugin.Context) (plugin.Task, error) {
		th, err := state.NewThread(fn, func(L *lua.LState) []lua.LValue {
			return []lua.LValue{contextTable(L, fc)}
		})
		if err != nil {
			return nil, err
		}
		return &coroutineTask{state: state, thread: th}, nil
	})
}

// coroutineTask adapts a Lua coroutine to plugin.Task. A yielded number
// is a pause in seconds.
type coroutineTask struct {
	state  *State
	thread *Thread
}

func (t *coroutineTask) Resume(ctx context.Context) (bool, plugin.Result, error) {
	done, values, err := t.thread.Resume()
	if err != nil {
		return true, plugin.Result{}, err
	}
	if done {
		res, err := decodeResult(t.state, values)
		return true, res, err
	}

	if len(values) > 0 {
		if n, ok := values[0].(lua.LNumber); ok && n > 0 {
			timer := time.NewTimer(time.Duration(float64(n) * float64(time.Second)))
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return true, plugin.Result{}, ctx.Err()
			case <-timer.C:
			}
		}
	}
	return false, plugin.Result{}, nil
}

// contextTable builds the ctx argument handed to run and run_async.
func contextTable(L *lua.LState, fc *plugin.Context) *lua.LTable {
	b := NewBridge(L)
	t := L.NewTable()
	if fc == nil {
		fc = &plugin.Context{}
	}

	t.RawSetString("feature", lua.LString(fc.Feature))
	t.RawSetString("config", b.ToLuaValue(fc.Config))
	t.RawSetString("print", L.NewFunction(func(L *lua.LState) int {
		parts := make([]string, L.GetTop())
		for i := range parts {
			parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
		}
		fc.Print(strings.Join(parts, "\t") + "\n")
		return 0
	}))

	opaque := map[string]any{
		"llm":       fc.LLM,
		"history":   fc.History,
		"analytics": fc.Analytics,
		"prompt":    fc.PromptBuilder,
	}
	for key, v := range opaque {
		if v != nil {
			t.RawSetString(key, b.Opaque(v))
		}
	}
	return t
}

// decodeResult turns an entry point's return values into a Result.
// nil means success, a string is a success message, a boolean is the
// success flag and a table carries success, message, data and error.
// The result is normalized so a failure always carries error text.
func decodeResult(state *State, values []lua.LValue) (plugin.Result, error) {
	if len(values) == 0 {
		return plugin.OK("", nil), nil
	}

	switch v := values[0].(type) {
	case *lua.LNilType:
		return plugin.OK("", nil), nil
	case lua.LString:
		return plugin.OK(string(v), nil), nil
	case lua.LBool:
		return plugin.Result{Success: bool(v)}.Normalize(), nil
	case *lua.LTable:
		state.mu.Lock()
		defer state.mu.Unlock()

		b := NewBridge(state.L)
		res := plugin.Result{}
		res.Message, _ = b.String(v, "message")
		res.Error, _ = b.String(v, "error")
		res.Data = b.ToGoValue(v.RawGetString("data"))
		if ok, present := b.Bool(v, "success"); present {
			res.Success = ok
		} else {
			res.Success = res.Error == ""
		}
		return res.Normalize(), nil
	default:
		return plugin.Result{}, fmt.Errorf("%w: %s", ErrBadResult, v.Type())
	}
}
