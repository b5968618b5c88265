package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/collage/pkg/buildinfo"
	"github.com/matzehuels/collage/pkg/cache"
	"github.com/matzehuels/collage/pkg/config"
	"github.com/matzehuels/collage/pkg/integrations/unsplash"
	"github.com/matzehuels/collage/pkg/search"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = config.AppName

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
	Logger     *log.Logger
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Collage browses photos as a scattered collage",
		Long: `Collage shows a photo surrounded by related photos scattered across the screen.
Selecting a photo pivots the collage: a new search runs from its description
and the surrounding photos are laid out again.`,
		Version:      buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/collage/config.toml)")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Service Factory
// =============================================================================

func (c *CLI) loadConfig() (config.Config, error) {
	return config.Load(c.configPath)
}

// searchFlags are shared by every command that runs searches.
type searchFlags struct {
	noCache bool
	refresh bool
	remote  string
}

func (f *searchFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable response caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "bypass cached responses")
	cmd.Flags().StringVar(&f.remote, "remote", "", "search through a running collage server (e.g. http://localhost:8080)")
}

// newSearchService builds the searcher for CLI use. The returned close
// function releases the cache backend.
func (c *CLI) newSearchService(ctx context.Context, cfg config.Config, f searchFlags) (*search.Service, func() error, error) {
	logger := loggerFromContext(ctx)
	if f.remote != "" {
		svc := search.NewService(search.NewRemoteClient(f.remote, cfg.Unsplash.PerPage), logger)
		svc.Timeout = cfg.Server.RequestTimeout.Duration
		return svc, func() error { return nil }, nil
	}

	backend, err := openCache(ctx, cfg, f.noCache)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Unsplash.AccessKey == "" {
		logger.Warn("no Unsplash access key configured; set UNSPLASH_ACCESS_KEY")
	}
	svc := search.NewService(unsplash.NewClient(backend, cfg.UnsplashClientConfig()), logger)
	svc.Refresh = f.refresh
	svc.Timeout = cfg.Server.RequestTimeout.Duration
	return svc, backend.Close, nil
}

func openCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	backend, err := cache.Open(ctx, cfg.CacheOptions())
	if err != nil {
		loggerFromContext(ctx).Warn("cache unavailable, continuing without it", "backend", cfg.Cache.Backend, "error", err)
		return cache.NewNullCache(), nil
	}
	return backend, nil
}
