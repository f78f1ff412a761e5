package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/storeweaver/pkg/config"
	"github.com/matzehuels/storeweaver/pkg/pipeline"
)

// engineFlags are the generation flags shared by several commands. Flags
// that are not set on the command line leave the configured value alone.
type engineFlags struct {
	catalog     string
	viewport    string
	strategy    string
	metrics     string
	seed        uint64
	minContent  int
	maxContent  int
	enhancedFit bool
	noCache     bool
}

func (f *engineFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.catalog, "catalog", "", "module catalog (default from config)")
	flags.StringVarP(&f.viewport, "viewport", "w", "", "viewport: wide, medium, narrow")
	flags.StringVar(&f.strategy, "strategy", "", "composer strategy: zones, simple")
	flags.StringVar(&f.metrics, "metrics", "", "store metrics CSV for engagement ranking")
	flags.Uint64VarP(&f.seed, "seed", "s", 0, "random seed (default: random)")
	flags.IntVar(&f.minContent, "min-content", 0, "minimum content modules")
	flags.IntVar(&f.maxContent, "max-content", 0, "maximum content modules")
	flags.BoolVar(&f.enhancedFit, "enhanced-fit", false, "penalize wide scaling and tiny sources")
	flags.BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// options overlays the flags set on cmd onto the configured engine settings.
func (f *engineFlags) options(cmd *cobra.Command, cfg config.Engine) (pipeline.Options, string) {
	opts := pipeline.FromConfig(cfg)
	metrics := cfg.Metrics

	flags := cmd.Flags()
	if flags.Changed("catalog") {
		opts.CatalogPath = f.catalog
	}
	if flags.Changed("viewport") {
		opts.Viewport = f.viewport
	}
	if flags.Changed("strategy") {
		opts.Strategy = f.strategy
	}
	if flags.Changed("metrics") {
		metrics = f.metrics
	}
	if flags.Changed("seed") {
		seed := f.seed
		opts.Seed = &seed
	}
	if flags.Changed("min-content") {
		opts.MinContent = f.minContent
	}
	if flags.Changed("max-content") {
		opts.MaxContent = f.maxContent
	}
	if flags.Changed("enhanced-fit") {
		opts.EnhancedFit = f.enhancedFit
	}
	return opts, metrics
}
