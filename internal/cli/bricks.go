package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/storeweaver/pkg/layout"
	"github.com/matzehuels/storeweaver/pkg/pipeline"
)

// bricksCommand creates the bricks command for grouping a saved layout.
func (c *CLI) bricksCommand() *cobra.Command {
	var (
		catalogPath string
		output      string
		noCache     bool
		refresh     bool
	)

	cmd := &cobra.Command{
		Use:   "bricks [layout.json]",
		Short: "Group a generated layout into narrow-viewport bricks",
		Long: `Group a generated layout into narrow-viewport bricks.

The bricks command takes a layout.json file (produced by 'generate') and packs
adjacent small content modules into 2x2 grids and feature stacks. Header, hero
and heading entries always stay single.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := pipeline.FromConfig(cfg.Engine)
			if catalogPath != "" {
				opts.CatalogPath = catalogPath
			}
			opts.Refresh = refresh

			runner, err := c.newRunner(cfg.Cache, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			return c.runBricks(cmd.Context(), runner, args[0], opts, output)
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "module catalog the layout was generated from (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.bricks.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached groupings")

	return cmd
}

// runBricks resolves the layout against its catalog, groups it and writes
// the layout with bricks.
func (c *CLI) runBricks(ctx context.Context, runner *pipeline.Runner, input string, opts pipeline.Options, output string) error {
	l, err := layout.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read layout %s: %w", input, err)
	}

	opts.Logger = c.Logger
	opts.Hooks = pipeline.NewLogHooks(c.Logger)
	if err := loadCatalog(ctx, runner, &opts, ""); err != nil {
		return err
	}

	seq, _, err := layout.Parse(l, opts.Catalog)
	if err != nil {
		return fmt.Errorf("resolve layout %s: %w", input, err)
	}

	groups, hit, err := runner.GroupWithCacheInfo(ctx, seq, opts)
	if err != nil {
		return fmt.Errorf("group: %w", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".bricks.json"
	}
	if outputPath == "-" {
		return layout.Write(layout.Export(seq, groups), os.Stdout)
	}
	if err := layout.WriteFile(layout.Export(seq, groups), outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Bricks complete")
	printFile(outputPath)
	printLayoutStats(seq.Len(), seq.ContentCount(), len(groups), hit)
	return nil
}
