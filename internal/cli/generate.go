package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/storeweaver/pkg/errors"
	"github.com/matzehuels/storeweaver/pkg/layout"
	"github.com/matzehuels/storeweaver/pkg/pipeline"
)

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		flags   engineFlags
		output  string
		group   bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a store layout from a module catalog",
		Long: `Generate a store layout from a module catalog.

The layout opens with the store header and a hero module, then fills the
content target. Wide and medium viewports reserve zones for interactive
modules; narrow viewports are grouped into bricks.

The same catalog, viewport, seed and strategy always produce the same
layout. Results are cached.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts, metrics := flags.options(cmd, cfg.Engine)
			opts.Group = group
			opts.Refresh = refresh

			runner, err := c.newRunner(cfg.Cache, flags.noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			return c.runGenerate(cmd.Context(), runner, opts, metrics, output)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVarP(&group, "group", "g", false, "group the layout into bricks (always on for narrow)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached layouts")

	return cmd
}

// runGenerate executes the pipeline and writes the layout.
func (c *CLI) runGenerate(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options, metrics, output string) error {
	opts.Logger = c.Logger
	opts.Hooks = pipeline.NewLogHooks(c.Logger)
	if err := loadCatalog(ctx, runner, &opts, metrics); err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	res, err := runner.Execute(ctx, opts)
	if res == nil {
		return fmt.Errorf("generate: %w", err)
	}
	prog.done("Generated layout", "id", res.Sequence.ID)

	if output == "" {
		if _, werr := os.Stdout.Write(res.Data); werr != nil {
			return werr
		}
		return err
	}

	if werr := layout.WriteFile(res.Layout, output); werr != nil {
		return fmt.Errorf("write output %s: %w", output, werr)
	}

	if err != nil {
		printWarning("Partial layout: %s", errs.UserMessage(err))
	} else {
		printSuccess("Layout complete")
	}
	printFile(output)
	printLayoutStats(res.Stats.Entries, res.Stats.Content, res.Stats.Groups, res.CacheInfo.LayoutHit)
	if len(res.Groups) == 0 && err == nil {
		printNewline()
		printNextStep("Group", appName+" bricks "+output)
	}
	return err
}
