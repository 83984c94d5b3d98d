// Package cli implements the ghfolio command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ghfolio/pkg/buildinfo"
	"github.com/matzehuels/ghfolio/pkg/cache"
	"github.com/matzehuels/ghfolio/pkg/config"
	"github.com/matzehuels/ghfolio/pkg/integrations/github"
	"github.com/matzehuels/ghfolio/pkg/observability"
	"github.com/matzehuels/ghfolio/pkg/portfolio"
	"github.com/matzehuels/ghfolio/pkg/projects"
	"github.com/matzehuels/ghfolio/pkg/snapshot"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "ghfolio"

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

	envFile   string
	cfg       *config.Config
	tokenOnce sync.Once
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), envFile: config.DefaultEnvFile}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "ghfolio serves GitHub-derived portfolio data",
		Long: `ghfolio collects a GitHub user's repositories, classifies them and aggregates
languages and technologies into the statistics and project cards a portfolio
site displays. It runs as an HTTP API or prints the same reports locally.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.envFile, "env-file", config.DefaultEnvFile, "dotenv file read before the environment (empty to skip)")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.projectsCommand())
	root.AddCommand(c.snapshotsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.envFile)
	if err != nil {
		return err
	}
	c.cfg = cfg
	if c.Logger.GetLevel() <= log.DebugLevel {
		observability.NewLogHooks(c.Logger).Register()
	}
	return nil
}

func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
		},
	}
}

// =============================================================================
// Backend Factory
// =============================================================================

// backendOptions selects how a command's backend is assembled.
type backendOptions struct {
	noCache     bool // skip every cache layer
	refresh     bool // recompute reports and refetch API responses
	memoryStore bool // keep snapshots in memory unless MongoDB is configured
}

// backend bundles the portfolio service with the resources it owns.
type backend struct {
	service *portfolio.Service
	cache   cache.Cache
	store   snapshot.Store
}

func (b *backend) Close() {
	_ = b.store.Close()
	_ = b.cache.Close()
}

// newBackend wires cache, snapshot store and GitHub client into a portfolio
// service according to the loaded configuration.
func (c *CLI) newBackend(ctx context.Context, opts backendOptions) (*backend, error) {
	parsers, err := c.cfg.Parsers()
	if err != nil {
		return nil, err
	}

	ch, err := c.openCache(ctx, opts.noCache || c.cfg.NoCache)
	if err != nil {
		return nil, err
	}
	store, err := c.openStore(ctx, opts.memoryStore)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}

	c.warnMissingToken()
	gh := github.NewClient(c.cfg.Token(), ch, github.Options{
		BaseURL:  c.cfg.GitHubAPIURL,
		CacheTTL: c.cfg.HTTPCacheTTL,
		Refresh:  opts.refresh,
	})

	svc := portfolio.New(gh, ch, store, c.Logger, portfolio.Options{
		Parsers:      parsers,
		MaxManifests: c.cfg.MaxManifests,
		MaxProjects:  c.cfg.MaxProjects,
		Concurrency:  c.cfg.Concurrency,
		CacheTTL:     c.cfg.CacheTTL,
		Refresh:      opts.refresh,
		Projects: projects.Options{
			DefaultDescription: c.cfg.DefaultDescription,
			DateLayout:         c.cfg.DateLayout,
		},
	})
	return &backend{service: svc, cache: ch, store: store}, nil
}

func (c *CLI) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	switch {
	case noCache:
		return cache.NewNullCache(), nil
	case c.cfg.RedisURL != "":
		c.Logger.Debug("using redis cache")
		return cache.NewRedisCache(ctx, c.cfg.RedisURL)
	}
	dir := c.cfg.CacheDir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

func (c *CLI) openStore(ctx context.Context, memory bool) (snapshot.Store, error) {
	switch {
	case c.cfg.MongoURI != "":
		c.Logger.Debug("using mongodb snapshot store", "database", c.cfg.MongoDatabase)
		return snapshot.NewMongoStore(ctx, c.cfg.MongoURI, c.cfg.MongoDatabase)
	case memory:
		return snapshot.NewMemoryStore(snapshot.DefaultKeep), nil
	}
	dir, err := snapshotDir()
	if err != nil {
		return nil, err
	}
	return snapshot.NewFileStore(dir)
}

func (c *CLI) warnMissingToken() {
	if c.cfg.Token() != "" {
		return
	}
	c.tokenOnce.Do(func() {
		c.Logger.Warn("no GitHub token configured, unauthenticated requests are heavily rate limited", "env", "GITHUB_TOKEN")
	})
}

// username picks the positional argument, falling back to the configured
// default user.
func (c *CLI) username(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return c.cfg.Username()
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/ghfolio/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// snapshotDir returns where the CLI keeps report snapshots
// (~/.local/share/ghfolio/snapshots/).
func snapshotDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName, "snapshots"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("cannot locate home directory for snapshots")
	}
	return filepath.Join(home, ".local", "share", appName, "snapshots"), nil
}
