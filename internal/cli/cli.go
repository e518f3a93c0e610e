// Package cli implements the repoexplorer command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/repoexplorer/pkg/buildinfo"
	"github.com/matzehuels/repoexplorer/pkg/cache"
	"github.com/matzehuels/repoexplorer/pkg/config"
	"github.com/matzehuels/repoexplorer/pkg/errors"
	"github.com/matzehuels/repoexplorer/pkg/history"
	"github.com/matzehuels/repoexplorer/pkg/integrations/github"
	"github.com/matzehuels/repoexplorer/pkg/observability"
	"github.com/matzehuels/repoexplorer/pkg/search"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "repoexplorer"
)

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

	verbose    bool
	configPath string
	token      string
	endpoint   string
	proxyURL   string

	cfg *config.Config
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
		Short: "Explore a GitHub user's public repositories",
		Long: `repoexplorer lists the public repositories of a GitHub user, most recently
updated first, and narrows them down by name and primary language.

GitHub's GraphQL API requires a token. Provide one with GITHUB_TOKEN, a .env
file, the config file, --token, or 'repoexplorer github login'. Alternatively
point --proxy at a relay started with 'repoexplorer serve'.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/repoexplorer/config.toml)")
	flags.StringVar(&c.token, "token", "", "GitHub token (overrides GITHUB_TOKEN)")
	flags.StringVar(&c.endpoint, "endpoint", "", "GraphQL endpoint")
	flags.StringVar(&c.proxyURL, "proxy", "", "relay server URL; the relay supplies the token")

	root.AddCommand(c.searchCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.githubCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup runs before every command: it applies --verbose, attaches the
// logger to the context and loads the configuration.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	if c.verbose {
		c.SetLogLevel(LogDebug)
		observability.NewLogHooks(c.Logger).Install()
	}
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))

	cfg, err := config.Load(config.Options{Path: c.configPath})
	if err != nil {
		return err
	}
	cfg.SetToken(c.token)
	if c.endpoint != "" {
		cfg.Endpoint = c.endpoint
	}
	if c.proxyURL != "" {
		cfg.ProxyURL = c.proxyURL
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg

	c.Logger.Debug("config loaded", "path", cfg.Path, "token", cfg.TokenSource, "proxy", cfg.UsesProxy())
	return nil
}

// =============================================================================
// Factories
// =============================================================================

// resolveToken falls back to the saved login when no other source set a
// token.
func (c *CLI) resolveToken(ctx context.Context) string {
	if c.cfg.Token == "" {
		if sess := savedSession(ctx); sess != nil && c.cfg.UseSessionToken(sess.AccessToken) {
			loggerFromContext(ctx).Debug("using saved login", "user", sess.Login())
		}
	}
	return c.cfg.Token
}

// newClient creates the GraphQL client for searches.
func (c *CLI) newClient(ctx context.Context) *github.Client {
	opts := []github.Option{github.WithTimeout(c.cfg.Timeout)}
	if c.cfg.UsesProxy() {
		return github.NewProxyClient(c.cfg.ProxyURL, opts...)
	}

	token := c.resolveToken(ctx)
	if token == "" {
		warnMissingToken()
	}
	opts = append(opts, github.WithEndpoint(c.cfg.Endpoint))
	return github.NewClient(token, opts...)
}

// newController creates a search controller backed by newClient.
func (c *CLI) newController(ctx context.Context) *search.Controller {
	return search.New(c.newClient(ctx),
		search.WithPageSize(c.cfg.PageSize),
		search.WithLogger(loggerFromContext(ctx)),
	)
}

// openHistory opens the configured history backend.
func (c *CLI) openHistory(ctx context.Context) (history.Store, error) {
	h := c.cfg.History
	switch h.Backend {
	case config.HistoryMongo:
		return history.NewMongoStore(ctx, h.MongoURI, h.MongoDatabase)
	case config.HistoryNone:
		return history.Nop{}, nil
	default:
		return history.NewFileStore(h.Path, h.Limit)
	}
}

// recordSearch adds a successful search to the history. Failures are
// logged, never returned.
func (c *CLI) recordSearch(ctx context.Context, store history.Store, v search.View) {
	if v.Phase != search.PhaseSucceeded {
		return
	}
	err := store.Add(ctx, history.Entry{
		Username:   v.Username,
		SearchedAt: time.Now(),
		RepoCount:  len(v.Repositories),
	})
	if err != nil {
		loggerFromContext(ctx).Warn("record history", "err", err)
	}
}

// newRelayCache creates the cache backend selected for the relay.
func (c *CLI) newRelayCache(ctx context.Context) (cache.Cache, error) {
	r := c.cfg.Relay
	switch r.Cache {
	case config.CacheMemory:
		return cache.NewMemoryCache(cache.DefaultMemoryEntries)
	case config.CacheFile:
		dir, err := c.relayCacheDir()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "resolve cache dir")
		}
		return cache.NewFileCache(dir)
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, r.RedisURL)
	default:
		return cache.NewNullCache(), nil
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/repoexplorer/).
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
