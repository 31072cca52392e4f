package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/workbench/internal/app"
	"github.com/dshills/workbench/internal/config"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	pluginRoot string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "workbench",
		Short:         "Discover and run workbench features",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", config.DefaultFileName, "path to the configuration file")
	pf.StringVar(&flags.pluginRoot, "plugins", "", "plugin root directory (overrides configuration)")
	pf.StringVar(&flags.logLevel, "loglevel", "", "log level: debug, info, warn or error")
	pf.StringVar(&flags.logFormat, "logformat", "", "log format: text or json")

	cmd.AddCommand(
		newListCmd(flags),
		newRunCmd(flags),
		newCheckCmd(flags),
		newHistoryCmd(flags),
	)
	return cmd
}

// loadConfig resolves the configuration and applies flag overrides.
func (f *globalFlags) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.pluginRoot != "" {
		cfg.PluginRoot = f.pluginRoot
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Log.Format = f.logFormat
	}
	return cfg, cfg.Validate()
}

// start builds and initializes the application for a command.
func (f *globalFlags) start(cmd *cobra.Command) (*app.Application, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.New(app.Options{Config: cfg, Console: cmd.OutOrStdout()})
	if err != nil {
		return nil, err
	}
	if _, err := a.Init(cmd.Context()); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}
