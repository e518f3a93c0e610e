package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/repoexplorer/pkg/cache"
	"github.com/matzehuels/repoexplorer/pkg/relay"
)

// pruneInterval is how often an in-memory relay cache drops expired entries.
const pruneInterval = time.Minute

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		cacheKind string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a relay that adds the GitHub token to GraphQL requests",
		Long: `Run an HTTP relay so clients can search without holding a token.

  POST /api/github                        forwards a GraphQL body to GitHub
  GET  /api/users/{username}/repositories runs a search, returns the view as JSON
  GET  /healthz                           liveness probe

Point other clients at it with --proxy or REPOEXPLORER_PROXY_URL.`,
		Example: `  GITHUB_TOKEN=ghp_... repoexplorer serve --addr :8787 --cache memory
  repoexplorer search octocat --proxy http://localhost:8787`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.cfg.Relay.Addr = addr
			}
			if cacheKind != "" {
				c.cfg.Relay.Cache = cacheKind
				if err := c.cfg.Validate(); err != nil {
					return err
				}
			}
			return c.runServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default "+relay.DefaultAddr+")")
	cmd.Flags().StringVar(&cacheKind, "cache", "", "response cache: none, memory, file or redis")

	return cmd
}

func (c *CLI) runServe(ctx context.Context) error {
	logger := loggerFromContext(ctx)

	token := c.resolveToken(ctx)
	if token == "" {
		printWarning("No GitHub token configured. The relay will answer every query with 500.")
	}

	store, err := c.newRelayCache(ctx)
	if err != nil {
		return err
	}

	srv := relay.New(relay.Config{
		Upstream: c.cfg.Endpoint,
		Token:    token,
		Cache:    store,
		CacheTTL: c.cfg.Relay.CacheTTL,
		Timeout:  c.cfg.Timeout,
		PageSize: c.cfg.PageSize,
		Logger:   logger,
	})
	defer srv.Close()

	logger.Info("starting relay", "cache", c.cfg.Relay.Cache, "ttl", c.cfg.Relay.CacheTTL)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx, c.cfg.Relay.Addr)
	})
	if mem, ok := store.(*cache.MemoryCache); ok {
		g.Go(func() error {
			pruneLoop(gctx, mem, pruneInterval, func(n int) {
				logger.Debug("pruned relay cache", "entries", n, "remaining", mem.Len())
			})
			return nil
		})
	}
	return g.Wait()
}

// pruneLoop calls Prune every interval until ctx is done.
func pruneLoop(ctx context.Context, mem *cache.MemoryCache, interval time.Duration, report func(int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := mem.Prune(); n > 0 && report != nil {
				report(n)
			}
		}
	}
}
