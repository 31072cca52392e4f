// Package app wires the workbench together: configuration, logging, run
// history, plugin runtimes, discovery, the feature registry and the executor.
package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/dshills/workbench/internal/config"
	"github.com/dshills/workbench/internal/history"
	"github.com/dshills/workbench/internal/logging"
	"github.com/dshills/workbench/internal/plugin"
	"github.com/dshills/workbench/internal/plugin/descriptor"
	"github.com/dshills/workbench/internal/plugin/discovery"
	"github.com/dshills/workbench/internal/plugin/execute"
	"github.com/dshills/workbench/internal/plugin/lua"
	"github.com/dshills/workbench/internal/plugin/registry"
)

// Application is the central coordinator for the workbench components.
type Application struct {
	cfg     *config.Config
	logger  *slog.Logger
	console io.Writer

	// Run history; nil when disabled
	history *history.Store

	// Plugin runtimes, in precedence order
	luaRuntime        *lua.Runtime
	descriptorRuntime *descriptor.Runtime

	engine   *discovery.Engine
	registry *registry.Registry
	executor *execute.Executor

	// Collaborators owned by the host and handed to features untouched
	llm           any
	analytics     any
	promptBuilder any

	initialized atomic.Bool
	closed      atomic.Bool
}

// Options configures the application.
type Options struct {
	// Config is the resolved configuration. Defaults apply when nil.
	Config *config.Config

	// Logger overrides the logger built from Config.Log.
	Logger *slog.Logger

	// Console receives feature output. Defaults to stdout.
	Console io.Writer

	// LLM, Analytics and PromptBuilder are passed to features as-is.
	LLM           any
	Analytics     any
	PromptBuilder any
}

// New creates an Application. Discovery does not run until Init.
func New(opts Options) (*Application, error) {
	app := &Application{
		cfg:           opts.Config,
		logger:        opts.Logger,
		console:       opts.Console,
		llm:           opts.LLM,
		analytics:     opts.Analytics,
		promptBuilder: opts.PromptBuilder,
	}
	if app.cfg == nil {
		app.cfg = config.Default()
	}
	if app.console == nil {
		app.console = os.Stdout
	}

	if err := app.bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap() error {
	// 1. Logging
	if app.logger == nil {
		logger, err := logging.New(os.Stderr, app.cfg.Log.Level, app.cfg.Log.Format)
		if err != nil {
			return &InitError{Component: "logging", Err: err}
		}
		app.logger = logger
	}

	// 2. History
	var recorder []execute.Option
	if app.cfg.History.Enabled {
		store, err := history.Open(app.cfg.History.Path)
		if err != nil {
			return &InitError{Component: "history", Err: err}
		}
		app.history = store
		recorder = append(recorder, execute.WithRecorder(store))
	}

	// 3. Runtimes and discovery
	app.luaRuntime = lua.NewRuntime()
	app.descriptorRuntime = descriptor.NewRuntime()
	app.engine = discovery.New(app.cfg.PluginRoot,
		discovery.WithRuntimes(app.luaRuntime, app.descriptorRuntime))

	// 4. Registry and executor
	app.registry = registry.New()
	app.executor = execute.New(recorder...)

	return nil
}

// Context returns ctx carrying the application logger.
func (app *Application) Context(ctx context.Context) context.Context {
	return logging.NewContext(ctx, app.logger)
}

// Init runs the single discovery pass and fills the registry.
func (app *Application) Init(ctx context.Context) (discovery.Result, error) {
	if !app.initialized.CompareAndSwap(false, true) {
		return discovery.Result{}, ErrAlreadyInitialized
	}

	ctx = app.Context(ctx)
	result := app.registry.Load(ctx, app.engine)

	logger := logging.Component(ctx, "app")
	for _, w := range result.Warnings {
		logger.Warn("discovery warning", "warning", w)
	}
	for _, e := range result.Errors {
		logger.Warn("plugin not loaded", "path", e.FeaturePath, "type", e.Type, "error", e.Message)
	}
	return result, nil
}

// Registry returns the feature registry.
func (app *Application) Registry() *registry.Registry {
	return app.registry
}

// Config returns the application configuration.
func (app *Application) Config() *config.Config {
	return app.cfg
}

// History returns the run history store, or nil when history is disabled.
func (app *Application) History() *history.Store {
	return app.history
}

// Logger returns the application logger.
func (app *Application) Logger() *slog.Logger {
	return app.logger
}

// Run executes the named feature. Faults inside the feature are reported
// in the result; the error covers only lookup failures.
func (app *Application) Run(ctx context.Context, name string) (plugin.Result, error) {
	if !app.initialized.Load() {
		return plugin.Result{}, ErrNotInitialized
	}

	f, ok := app.registry.Get(name)
	if !ok {
		return plugin.Result{}, &FeatureError{Feature: name, Err: ErrFeatureNotFound}
	}
	if !f.Manifest().Enabled {
		return plugin.Result{}, &FeatureError{Feature: name, Err: ErrFeatureDisabled}
	}

	return app.executor.Execute(app.Context(ctx), f, app.featureContext(name)), nil
}

// featureContext builds the context handed to a feature's entry point.
func (app *Application) featureContext(name string) *plugin.Context {
	fc := &plugin.Context{
		Feature:       name,
		Console:       app.console,
		Config:        app.cfg.FeatureSettings(name),
		LLM:           app.llm,
		Analytics:     app.analytics,
		PromptBuilder: app.promptBuilder,
	}
	if app.history != nil {
		fc.History = app.history
	}
	return fc
}

// Close releases runtimes and the history store.
func (app *Application) Close() error {
	if !app.closed.CompareAndSwap(false, true) {
		return nil
	}

	var errs []error
	errs = append(errs, app.luaRuntime.Close())
	errs = append(errs, app.descriptorRuntime.Close(context.Background()))
	if app.history != nil {
		errs = append(errs, app.history.Close())
	}
	return errors.Join(errs...)
}
