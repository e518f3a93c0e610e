package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/repoexplorer/pkg/errors"
	"github.com/matzehuels/repoexplorer/pkg/integrations/github"
	"github.com/matzehuels/repoexplorer/pkg/observability"
	"github.com/matzehuels/repoexplorer/pkg/repo"
)

// User-facing messages.
const (
	MsgEnterUsername = "Please enter a GitHub username"
	MsgFetchFailed   = "Failed to fetch repositories"
)

// Fetcher retrieves raw repository nodes. *github.Client implements it.
type Fetcher interface {
	FetchRepositories(ctx context.Context, username string, first int) ([]github.RawNode, error)
}

// Controller owns the search state. It is safe for concurrent use.
type Controller struct {
	fetcher  Fetcher
	pageSize int
	logger   *log.Logger
	hooks    observability.SearchHooks

	mu        sync.Mutex
	gen       uint64
	cancel    context.CancelFunc
	state     View
	nextID    int
	listeners map[int]func(View)
}

// Option configures a Controller.
type Option func(*Controller)

// WithPageSize sets how many repositories each search requests.
func WithPageSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithLogger sets the logger for search events.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithHooks overrides the globally registered search hooks.
func WithHooks(h observability.SearchHooks) Option {
	return func(c *Controller) { c.hooks = h }
}

// New creates an idle controller.
func New(f Fetcher, opts ...Option) *Controller {
	c := &Controller{
		fetcher:   f,
		pageSize:  github.DefaultPageSize,
		logger:    log.New(io.Discard),
		listeners: make(map[int]func(View)),
		state: View{
			Phase:  PhaseIdle,
			Filter: repo.DefaultFilter(),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnChange registers fn to receive every new view. Callbacks run outside
// the controller lock, on the goroutine that caused the change. The
// returned function unregisters fn.
func (c *Controller) OnChange(fn func(View)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// View returns the current state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Search runs a search for username and blocks until it completes or is
// superseded. It returns the view current at that point, which belongs to
// a newer search if this one was superseded.
func (c *Controller) Search(ctx context.Context, username string) View {
	name := strings.TrimSpace(username)

	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.cancelLocked()
	c.state.Phase = PhaseValidating

	if err := errors.ValidateUsername(name); err != nil {
		// Previous results and filters stay visible.
		c.state.Phase = PhaseFailed
		c.state.Loading = false
		c.state.Error = MsgEnterUsername
		c.state.ErrorKind = KindValidation
		c.state.Notice = ""
		v := c.snapshot()
		c.mu.Unlock()
		c.notify(v)
		return v
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	id := uuid.NewString()
	c.state = View{
		SearchID:     id,
		Username:     name,
		Phase:        PhaseFetching,
		Loading:      true,
		Repositories: []repo.Repository{},
		Filter:       repo.DefaultFilter(),
		Searched:     true,
	}
	v := c.snapshot()
	hooks := c.searchHooks()
	c.mu.Unlock()
	c.notify(v)

	c.logger.Debug("searching", "user", name, "id", id)
	hooks.OnSearchStart(fetchCtx, id, name)
	start := time.Now()

	nodes, err := c.fetcher.FetchRepositories(fetchCtx, name, c.pageSize)
	var repos []repo.Repository
	if err == nil {
		repos = github.NormalizeAll(nodes)
	}
	elapsed := time.Since(start)

	c.mu.Lock()
	if gen != c.gen {
		v := c.snapshot()
		c.mu.Unlock()
		cancel()
		c.logger.Debug("search superseded", "user", name, "id", id)
		hooks.OnSearchComplete(ctx, id, name, 0, elapsed, true, err)
		return v
	}
	c.cancel = nil
	cancel()

	c.state.Loading = false
	if err != nil {
		c.state.Phase = PhaseFailed
		c.state.ErrorKind = ErrorKind(github.KindOf(err))
		c.state.Error = Message(err, name)
	} else {
		c.state.Phase = PhaseSucceeded
		c.state.Repositories = repos
		if len(repos) == 0 {
			c.state.Notice = fmt.Sprintf("User \"%s\" has no public repositories", name)
		}
	}
	v = c.snapshot()
	c.mu.Unlock()
	c.notify(v)

	if err != nil {
		c.logger.Warn("search failed", "user", name, "err", err)
	} else {
		c.logger.Info("search done", "user", name, "repos", len(repos), "duration", elapsed.Round(time.Millisecond))
	}
	hooks.OnSearchComplete(ctx, id, name, len(repos), elapsed, false, err)
	return v
}

// SetNameFilter updates the name substring filter.
func (c *Controller) SetNameFilter(s string) View {
	return c.update(func(f *repo.FilterState) { f.NameSubstring = s })
}

// SetLanguageFilter updates the language selector. An empty selector
// selects all languages.
func (c *Controller) SetLanguageFilter(lang string) View {
	if lang == "" {
		lang = repo.AllLanguages
	}
	return c.update(func(f *repo.FilterState) { f.LanguageSelector = lang })
}

// ResetFilters restores the default filter state.
func (c *Controller) ResetFilters() View {
	return c.update(func(f *repo.FilterState) { *f = repo.DefaultFilter() })
}

// Cancel aborts the in-flight request, if any. Its search fails with a
// transport error.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
}

func (c *Controller) update(fn func(*repo.FilterState)) View {
	c.mu.Lock()
	fn(&c.state.Filter)
	v := c.snapshot()
	c.mu.Unlock()
	c.notify(v)
	return v
}

func (c *Controller) cancelLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) searchHooks() observability.SearchHooks {
	if c.hooks != nil {
		return c.hooks
	}
	return observability.Search()
}

// snapshot derives the visible list and facets from the current state.
// Callers must hold c.mu.
func (c *Controller) snapshot() View {
	v := c.state
	v.Repositories = slices.Clone(c.state.Repositories)
	if v.Repositories == nil {
		v.Repositories = []repo.Repository{}
	}
	v.Visible = repo.Filter(v.Repositories, v.Filter)
	v.Languages = repo.ExtractLanguages(v.Repositories)
	return v
}

func (c *Controller) notify(v View) {
	c.mu.Lock()
	fns := make([]func(View), 0, len(c.listeners))
	ids := make([]int, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, c.listeners[id])
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Message renders a fetch error for username as a single line.
func Message(err error, username string) string {
	switch github.KindOf(err) {
	case github.KindNone:
		return ""
	case github.KindNotFound:
		return fmt.Sprintf("User \"%s\" not found", username)
	case github.KindRemoteError:
		return errors.UserMessage(err)
	case github.KindRemoteStatus:
		code := github.StatusCode(err)
		return strings.TrimSpace(fmt.Sprintf("%s: GitHub API error: %d %s", MsgFetchFailed, code, http.StatusText(code)))
	default:
		if github.IsTimeout(err) {
			return MsgFetchFailed + ": request timed out"
		}
		return MsgFetchFailed
	}
}
