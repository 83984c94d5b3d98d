package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ghfolio/internal/telemetry"
	"github.com/matzehuels/ghfolio/pkg/api"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		static   string
		username string
		noCache  bool
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the portfolio API",
		Long: `Serve /api/github-stats and /api/github-projects over HTTP, optionally
alongside a built single-page app.

Snapshots are kept in memory, or in MongoDB when GHFOLIO_MONGO_URI is set, and
are served when GitHub cannot be reached. Traces are exported over OTLP/HTTP
when GHFOLIO_OTEL_ENDPOINT is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			if addr != "" {
				c.cfg.Addr = addr
			}
			if static != "" {
				c.cfg.StaticDir = static
			}
			if username != "" {
				c.cfg.GitHubUsername = username
			}

			shutdown, err := telemetry.Setup(ctx, appName, c.cfg.OTelEndpoint)
			if err != nil {
				return err
			}
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(sctx); err != nil {
					logger.Warn("telemetry shutdown failed", "error", err)
				}
			}()

			b, err := c.newBackend(ctx, backendOptions{noCache: noCache, memoryStore: true})
			if err != nil {
				return err
			}
			defer b.Close()

			srv := api.New(b.service, api.Options{
				DefaultUsername: c.cfg.Username(),
				StaticDir:       c.cfg.StaticDir,
				RequestTimeout:  timeout,
				Logger:          logger,
			})
			return srv.ListenAndServe(ctx, c.cfg.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default $GHFOLIO_ADDR or :8080)")
	cmd.Flags().StringVar(&static, "static", "", "directory of a built single-page app to serve")
	cmd.Flags().StringVarP(&username, "username", "u", "", "user reported when a request names none")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().DurationVar(&timeout, "timeout", api.DefaultRequestTimeout, "per-request deadline")

	return cmd
}
