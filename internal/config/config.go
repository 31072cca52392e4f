package config

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/workbench/internal/logging"
)

// Default locations.
const (
	DefaultFileName   = "workbench.toml"
	DefaultPluginRoot = "plugins"
)

// Config is the resolved workbench configuration.
type Config struct {
	// PluginRoot is the directory scanned for features.
	PluginRoot string `toml:"plugin_root" env:"WORKBENCH_PLUGIN_ROOT"`

	Log     LogConfig     `toml:"log"`
	History HistoryConfig `toml:"history"`

	// Features holds per-feature settings keyed by feature name.
	Features map[string]map[string]any `toml:"features"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `toml:"level" env:"WORKBENCH_LOG_LEVEL"`
	Format string `toml:"format" env:"WORKBENCH_LOG_FORMAT"`
}

// HistoryConfig configures the run history journal.
type HistoryConfig struct {
	Enabled bool   `toml:"enabled" env:"WORKBENCH_HISTORY_ENABLED"`
	Path    string `toml:"path" env:"WORKBENCH_HISTORY_PATH"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		PluginRoot: DefaultPluginRoot,
		Log: LogConfig{
			Level:  "info",
			Format: logging.FormatText,
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    defaultHistoryPath(),
		},
		Features: make(map[string]map[string]any),
	}
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".workbench", "history.db")
	}
	return filepath.Join(home, ".local", "share", "workbench", "history.db")
}

// Load resolves the configuration: defaults, then the TOML file at path,
// then environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEnvironment, err)
	}

	cfg.PluginRoot = expandHome(cfg.PluginRoot)
	cfg.History.Path = expandHome(cfg.History.Path)
	if cfg.Features == nil {
		cfg.Features = make(map[string]map[string]any)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile decodes the TOML file at path over c. Unknown keys are rejected.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		perr := &ParseError{Path: path, Message: err.Error(), Err: err}

		var derr *toml.DecodeError
		var serr *toml.StrictMissingError
		switch {
		case errors.As(err, &derr):
			perr.Line, perr.Column = derr.Position()
		case errors.As(err, &serr) && len(serr.Errors) > 0:
			perr.Line, perr.Column = serr.Errors[0].Position()
			perr.Message = fmt.Sprintf("unknown setting %q", strings.Join(serr.Errors[0].Key(), "."))
		}
		return perr
	}
	return nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.PluginRoot) == "" {
		return &ValidationError{Setting: "plugin_root", Value: c.PluginRoot, Message: "must not be empty"}
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return &ValidationError{Setting: "log.level", Value: c.Log.Level, Message: "must be debug, info, warn or error"}
	}
	switch strings.ToLower(c.Log.Format) {
	case logging.FormatText, logging.FormatJSON:
	default:
		return &ValidationError{Setting: "log.format", Value: c.Log.Format, Message: "must be text or json"}
	}
	if c.History.Enabled && strings.TrimSpace(c.History.Path) == "" {
		return &ValidationError{Setting: "history.path", Value: c.History.Path, Message: "required when history is enabled"}
	}
	return nil
}

// FeatureSettings returns a copy of the settings table for a feature.
// A feature without settings gets an empty map.
func (c *Config) FeatureSettings(name string) map[string]any {
	settings := make(map[string]any)
	maps.Copy(settings, c.Features[name])
	return settings
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
