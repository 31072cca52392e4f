package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/workbench/internal/plugin"
)

// errPluginsFailed makes check exit non-zero without printing twice.
var errPluginsFailed = errors.New("some plugins failed to load")

func newListCmd(flags *globalFlags) *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List loaded features",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := flags.start(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			features, err := opts.selectFeatures(a.Registry())
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(renderFeatures(features))
			return err
		},
	}

	cmd.Flags().StringVar(&opts.category, "category", "", "only list features in this category")
	cmd.Flags().BoolVar(&opts.apiOnly, "api", false, "only list features that need an API key")
	cmd.Flags().BoolVar(&opts.enabledOnly, "enabled", false, "only list enabled features")
	return cmd
}

// featureLister is the part of the registry the list command reads.
type featureLister interface {
	ListAll() []*plugin.Feature
	ListByCategory(c plugin.Category) []*plugin.Feature
	ListEnabled() []*plugin.Feature
	ListRequiringAPI() []*plugin.Feature
}

type listOptions struct {
	category    string
	apiOnly     bool
	enabledOnly bool
}

// selectFeatures starts from the narrowest registry query and intersects
// the remaining filters by name, keeping registry order.
func (o listOptions) selectFeatures(reg featureLister) ([]*plugin.Feature, error) {
	var queries [][]*plugin.Feature
	if o.category != "" {
		c, err := plugin.ParseCategory(o.category)
		if err != nil {
			return nil, err
		}
		queries = append(queries, reg.ListByCategory(c))
	}
	if o.apiOnly {
		queries = append(queries, reg.ListRequiringAPI())
	}
	if o.enabledOnly {
		queries = append(queries, reg.ListEnabled())
	}
	if len(queries) == 0 {
		return reg.ListAll(), nil
	}

	features := queries[0]
	for _, q := range queries[1:] {
		keep := make(map[string]bool, len(q))
		for _, f := range q {
			keep[f.Name()] = true
		}
		var narrowed []*plugin.Feature
		for _, f := range features {
			if keep[f.Name()] {
				narrowed = append(narrowed, f)
			}
		}
		features = narrowed
	}
	return features, nil
}

func newRunCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run <feature>",
		Short: "Run a feature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := flags.start(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(renderResult(res))
			if err != nil {
				return err
			}
			if !res.Success {
				return fmt.Errorf("%s: %s", res.Message, res.Error)
			}
			return nil
		},
	}
}

func newCheckCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report plugins that failed to load",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := flags.start(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			reg := a.Registry()
			_, err = cmd.OutOrStdout().Write(renderCheck(reg.Len(), reg.Errors(), reg.Warnings()))
			if err != nil {
				return err
			}
			if reg.HasErrors() {
				return errPluginsFailed
			}
			return nil
		},
	}
}

func newHistoryCmd(flags *globalFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [feature]",
		Short: "Show recent runs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := flags.start(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			store := a.History()
			if store == nil {
				return errors.New("run history is disabled")
			}

			var feature string
			if len(args) == 1 {
				feature = args[0]
			}
			entries, err := store.Recent(cmd.Context(), feature, limit)
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(renderHistory(entries))
			return err
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs to show")
	return cmd
}
