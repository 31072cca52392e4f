// Package plugin defines the contract between the workbench host and its
// feature plugins.
//
// A feature plugin lives in its own directory under the plugin root and
// declares a Manifest (identity, display metadata, category, flags and
// dependencies) plus an entry point. The host never loads plugin code
// directly; a Runtime turns a directory into a Module, the discovery engine
// validates and orders the resulting features, the registry indexes them and
// the executor invokes their entry points.
//
// # Plugin Structure
//
// Lua plugin:
//
//	plugins/summarize/
//	└── manifest.lua     # MANIFEST table + run(ctx) or run_async(ctx)
//
// Legacy Lua plugin (no manifest, a default one is synthesized):
//
//	plugins/old-tool/
//	└── service.lua
//
// Descriptor plugin backed by a compiled-in or wasm handler:
//
//	plugins/echo/
//	└── manifest.yaml    # manifest: {...}  run: {builtin: echo}
//
// # Manifest
//
//	MANIFEST = {
//	  name = "summarize",
//	  display_name = "Summarize",
//	  description = "Summarize the current prompt",
//	  icon = "S",
//	  color = "cyan",
//	  category = "ai",
//	  requires_api_key = true,
//	  dependencies = { "history" },
//	}
//
// # Entry Points
//
// An Entry is either blocking (a BlockingFunc runs to completion on the
// caller's goroutine) or suspending (a TaskFunc returns a Task that the
// executor resumes until it reports completion). Both produce a Result.
package plugin
