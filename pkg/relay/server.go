package relay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/repoexplorer/pkg/cache"
	"github.com/matzehuels/repoexplorer/pkg/integrations"
	"github.com/matzehuels/repoexplorer/pkg/integrations/github"
)

const (
	// UserAgent identifies relayed requests to GitHub.
	UserAgent = "github-repository-explorer"

	// DefaultAddr is the listen address when none is configured.
	DefaultAddr = ":8787"

	maxRequestBody  = 1 << 20
	shutdownTimeout = 10 * time.Second
)

// Error messages returned in {"error": ...} bodies.
const (
	ErrMethodNotAllowed = "Method not allowed"
	ErrNoToken          = "GitHub token not configured on server"
	ErrUpstream         = "Failed to fetch from GitHub API"
)

// Config configures a relay Server.
type Config struct {
	// Upstream is the GraphQL endpoint queries are forwarded to.
	Upstream string

	// Token is the GitHub credential added to every forwarded request.
	Token string

	// Cache stores successful upstream answers. Nil disables caching.
	Cache cache.Cache

	// CacheTTL is how long cached answers stay valid.
	CacheTTL time.Duration

	// Timeout bounds each upstream request.
	Timeout time.Duration

	// PageSize is used by the repositories endpoint.
	PageSize int

	Logger *log.Logger
}

// Server is the relay HTTP server.
type Server struct {
	cfg      Config
	upstream *integrations.Client
	cache    cache.Cache
	keyer    cache.Keyer
	group    singleflight.Group
	logger   *log.Logger
}

// New creates a relay server.
func New(cfg Config) *Server {
	if cfg.Upstream == "" {
		cfg.Upstream = github.DefaultEndpoint
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = github.DefaultPageSize
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	c := cfg.Cache
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Server{
		cfg:      cfg,
		upstream: integrations.NewClient(map[string]string{"User-Agent": UserAgent}, cfg.Timeout),
		cache:    cache.Instrument(c, "graphql"),
		keyer:    cache.NewScopedKeyer(cache.NewDefaultKeyer(), "repoexplorer:"),
		logger:   cfg.Logger,
	}
}

// Handler returns the HTTP handler for the relay routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.HandleFunc(github.RelayPath, s.handleGraphQL)
	r.Get("/api/users/{username}/repositories", s.handleRepositories)
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("relay listening", "addr", addr, "upstream", s.cfg.Upstream)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("relay shutting down")
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Close releases the cache.
func (s *Server) Close() error {
	return s.cache.Close()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
