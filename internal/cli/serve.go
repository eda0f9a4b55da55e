package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphmorph/internal/metrics"
	"github.com/matzehuels/graphmorph/internal/server"
	"github.com/matzehuels/graphmorph/pkg/cache"
	"github.com/matzehuels/graphmorph/pkg/config"
	"github.com/matzehuels/graphmorph/pkg/pipeline"
)

// serveFlags holds the flags of the serve command.
type serveFlags struct {
	addr       string
	configPath string
	noMetrics  bool
	runTTL     time.Duration
	maxRuns    int
	timeout    time.Duration
	scope      string
	cache      cacheFlags
}

// serveCommand starts the preview server.
func (c *CLI) serveCommand() *cobra.Command {
	var f serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP preview API",
		Long: `Serve starts an HTTP server that runs the pipeline on posted edge lists.

Endpoints:
  GET  /healthz
  GET  /metrics
  GET  /api/v1/layouts
  POST /api/v1/runs
  GET  /api/v1/runs/{id}
  GET  /api/v1/runs/{id}/artifacts/{name}

Runs are kept in memory for --run-ttl. A --config file supplies default
options for requests that leave them empty.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)

			var defaults pipeline.Options
			if f.configPath != "" {
				file, err := config.Load(f.configPath)
				if err != nil {
					return err
				}
				defaults = file.Options
			}

			runner, err := c.newRunner(ctx, f.cache)
			if err != nil {
				return err
			}
			defer runner.Close()
			if f.scope != "" {
				runner.Keyer = cache.NewScopedKeyer(runner.Keyer, f.scope+":")
			}

			opts := []server.Option{
				server.WithLogger(c.Logger),
				server.WithDefaults(defaults),
				server.WithStore(server.NewStore(f.runTTL, f.maxRuns)),
				server.WithRunTimeout(f.timeout),
			}
			if !f.noMetrics {
				reg := metrics.NewRegistry()
				metrics.Install(reg)
				opts = append(opts, server.WithMetrics(reg.Handler()))
			}

			printInfo("Listening on %s", StyleValue.Render(f.addr))
			return server.New(runner, opts...).ListenAndServe(ctx, f.addr)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.addr, "addr", "a", defaultAddr, "listen address")
	fl.StringVarP(&f.configPath, "config", "c", "", "TOML or YAML file with default run options")
	fl.BoolVar(&f.noMetrics, "no-metrics", false, "do not expose /metrics")
	fl.DurationVar(&f.runTTL, "run-ttl", server.DefaultRunTTL, "how long finished runs are kept")
	fl.IntVar(&f.maxRuns, "max-runs", server.DefaultMaxRuns, "maximum number of stored runs")
	fl.DurationVar(&f.timeout, "timeout", server.DefaultRunTimeout, "time limit for a single run")
	fl.StringVar(&f.scope, "cache-scope", "", "prefix cache keys so servers sharing a Redis do not collide")
	f.cache.register(cmd)

	return cmd
}
