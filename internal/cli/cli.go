// Package cli implements the storeweaver command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/storeweaver/pkg/buildinfo"
	"github.com/matzehuels/storeweaver/pkg/cache"
	"github.com/matzehuels/storeweaver/pkg/config"
	"github.com/matzehuels/storeweaver/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "storeweaver"

	// defaultEnvFile is loaded before environment overrides when present.
	defaultEnvFile = ".env"
)

var cacheBackends = []string{config.BackendNone, config.BackendFile, config.BackendMemory, config.BackendRedis}

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	envFile    string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:  newLogger(w, level),
		envFile: defaultEnvFile,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Storeweaver assembles brand-store layouts from a module catalog",
		Long:         `Storeweaver composes ordered brand-store page layouts from a catalog of cropped store modules, with zone planning for wide viewports and brick-wall grouping for narrow ones.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default: ./"+config.DefaultFile+" when present)")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", c.envFile, "dotenv file applied before environment overrides")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.bricksCommand())
	root.AddCommand(c.zonesCommand())
	root.AddCommand(c.scoreCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the settings selected by the persistent flags.
func (c *CLI) loadConfig() (config.Config, error) {
	var envFiles []string
	if c.envFile != "" {
		envFiles = append(envFiles, c.envFile)
	}
	cfg, err := config.Load(c.configPath, envFiles...)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(cfg config.Cache, noCache bool) (*pipeline.Runner, error) {
	store, err := newCache(cfg, noCache)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(store, cache.NewScopedKeyer(nil, cfg.Prefix), c.Logger)
	runner.TTL = cfg.TTL
	return runner, nil
}

func newCache(cfg config.Cache, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendMemory:
		return cache.NewMemoryCache(cfg.Entries)
	case config.BackendRedis:
		return cache.NewRedisCache(cache.RedisConfig{URL: cfg.RedisURL})
	default:
		return cache.NewFileCache(cfg.Dir)
	}
}

// loadCatalog loads the catalog named by opts and attaches engagement
// scores when a metrics file is given.
func loadCatalog(ctx context.Context, runner *pipeline.Runner, opts *pipeline.Options, metrics string) error {
	cat, hash, err := runner.LoadCatalog(ctx, opts.CatalogPath)
	if err != nil {
		return fmt.Errorf("load catalog %s: %w", opts.CatalogPath, err)
	}
	opts.Catalog, opts.CatalogHash = cat, hash

	if metrics == "" {
		return nil
	}
	scores, err := runner.LoadEngagement(cat, metrics)
	if err != nil {
		return fmt.Errorf("load metrics %s: %w", metrics, err)
	}
	opts.Engagement = scores
	return nil
}
