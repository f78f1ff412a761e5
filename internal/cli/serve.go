package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/storeweaver/internal/server"
)

// serveCommand creates the serve command that runs the layout API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags   engineFlags
		addr    string
		backend string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout API over HTTP",
		Long: `Serve the layout API over HTTP.

The catalog is loaded once at startup. Requests may override viewport, seed,
strategy and content bounds but always compose from the loaded catalog.

Endpoints:
  GET  /healthz
  GET  /v1/catalog
  GET  /v1/catalog/modules/{id}
  POST /v1/layouts
  POST /v1/bricks`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("cache") {
				cfg.Cache.Backend = backend
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			opts, metrics := flags.options(cmd, cfg.Engine)
			opts.Logger = c.Logger

			runner, err := c.newRunner(cfg.Cache, flags.noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			ctx := cmd.Context()
			if err := loadCatalog(ctx, runner, &opts, metrics); err != nil {
				return err
			}

			srv, err := server.New(server.Config{
				Runner:       runner,
				Catalog:      opts.Catalog,
				CatalogHash:  opts.CatalogHash,
				Defaults:     opts,
				Logger:       c.Logger,
				MaxBodyBytes: cfg.Server.MaxBodyBytes,
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			})
			if err != nil {
				return err
			}

			c.Logger.Info("serving layouts",
				"addr", cfg.Server.Addr,
				"catalog", opts.CatalogPath,
				"modules", opts.Catalog.Len(),
				"cache", cfg.Cache.Backend)
			return srv.ListenAndServe(ctx, cfg.Server.Addr)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default from config)")
	cmd.Flags().StringVar(&backend, "cache", "", "cache backend: "+strings.Join(cacheBackends, ", ")+" (default from config)")
	return cmd
}
