// Package lua loads features written in Lua.
//
// This package wraps the gopher-lua library to provide:
//   - A plugin runtime that recognizes manifest.lua and legacy service.lua modules
//   - Go-Lua type conversion bridge
//   - Blocking and coroutine-based entry points
//
// # Module layout
//
// A feature directory contains manifest.lua, which declares a global MANIFEST
// table and a run function:
//
//	MANIFEST = {
//	    name = "word_count",
//	    display_name = "Word Count",
//	    description = "Counts words in the configured text",
//	    icon = "#",
//	    color = "cyan",
//	    category = "utility",
//	    dependencies = {},
//	}
//
//	function run(ctx)
//	    ctx.print("counting")
//	    return { success = true, message = "done", data = { words = 3 } }
//	end
//
// Defining run_async instead of run makes the feature suspending. The function
// runs in a coroutine; coroutine.yield(n) pauses it for n seconds.
//
// A directory holding only service.lua is a legacy plugin. Its manifest is
// synthesized from the directory name.
//
// # Bridge
//
// The Bridge converts values in both directions:
//
//	bridge := lua.NewBridge(L)
//	tbl := bridge.ToLuaValue(map[string]any{"count": 42})
//	back := bridge.ToGoValue(tbl)
package lua
