package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	promhooks "github.com/matzehuels/collage/pkg/observability/prometheus"
	"github.com/matzehuels/collage/pkg/session"
	"github.com/matzehuels/collage/pkg/web"
)

// shutdownTimeout bounds how long in-flight requests may finish after the
// server is asked to stop.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags searchFlags
		addr  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the collage web server",
		Long: `Serve starts the HTTP server that renders collages in the browser.

Each visitor gets a session that holds the current arrangement. The server
also exposes the search proxy at /api and Prometheus metrics at /metrics.`,
		Example: `  collage serve
  collage serve --addr :3000
  UNSPLASH_ACCESS_KEY=... collage serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			logger := loggerFromContext(ctx)

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			hooks, err := promhooks.NewHooks(appName, reg)
			if err != nil {
				return fmt.Errorf("register metrics: %w", err)
			}
			hooks.Install()

			svc, closeFn, err := c.newSearchService(ctx, cfg, flags)
			if err != nil {
				return err
			}
			defer closeFn()

			handler := web.New(web.Options{
				Searcher:       svc,
				Store:          session.NewMemoryStore(cfg.Session.MaxSessions, cfg.Session.TTL.Duration),
				Layout:         cfg.CollageConfig(),
				Session:        cfg.ControllerConfig(),
				InitialQuery:   cfg.Session.InitialQuery,
				Viewport:       cfg.Viewport(),
				Debounce:       cfg.Session.Debounce.Duration,
				ExitDelay:      cfg.Session.ExitDelay.Duration,
				RequestTimeout: cfg.Server.RequestTimeout.Duration,
				Gatherer:       reg,
				Logger:         logger,
			})

			srv := &http.Server{
				Addr:         cfg.Server.Addr,
				Handler:      handler,
				ReadTimeout:  cfg.Server.ReadTimeout.Duration,
				WriteTimeout: cfg.Server.WriteTimeout.Duration,
				IdleTimeout:  cfg.Server.IdleTimeout.Duration,
			}

			printKeyValue("Listening", cfg.Server.Addr)
			printKeyValue("Metrics", cfg.Server.Addr+"/metrics")
			printKeyValue("Cache", cfg.Cache.Backend)
			logger.Debug("server config", "read_timeout", srv.ReadTimeout, "write_timeout", srv.WriteTimeout, "sessions", cfg.Session.MaxSessions)
			return listenAndServe(ctx, srv)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")

	return cmd
}

// listenAndServe runs srv until ctx is cancelled, then shuts it down
// gracefully.
func listenAndServe(ctx context.Context, srv *http.Server) error {
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	loggerFromContext(ctx).Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
