package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/waitgraph/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve starts an HTTP server exposing deadlock analysis and rendering.

Without --config it uses a file cache under the user cache directory and keeps
the 10000 most recent analysis records in memory, evicting the oldest first
(set max_records under [store] to change the limit). A TOML config can switch
the cache to Redis and the record store to MongoDB.`,
		Example: `  waitgraph serve
  waitgraph serve --config waitgraph.toml --addr :9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := server.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			logger.Debug("server config", "config", cfg.String())

			server.RegisterMetrics()
			srv, closeFn, err := server.Build(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeFn()

			return server.Run(ctx, cfg, srv.Handler(), logger)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a TOML server config")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}
