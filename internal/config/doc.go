// Package config provides the configuration for the workbench.
//
// Configuration is resolved in layers, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← WORKBENCH_*
//	├─────────────────────────────┤
//	│  2. Config File             │  ← workbench.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │
//	└─────────────────────────────┘
//
// Command line flags are applied by the CLI after Load returns.
//
// # File format
//
//	plugin_root = "./plugins"
//
//	[log]
//	level = "debug"
//	format = "json"
//
//	[history]
//	enabled = true
//	path = "~/.local/share/workbench/history.db"
//
//	[features.summarize]
//	max_words = 200
//
// Each [features.<name>] table is handed to that feature as its configuration.
package config
