package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/repoexplorer/pkg/history"
	"github.com/matzehuels/repoexplorer/pkg/search"
)

// ErrReported is returned when a command already printed its failure.
// The caller should exit non-zero without printing again.
var ErrReported = errors.New("failure already reported")

// searchOptions holds the flags of the search command.
type searchOptions struct {
	filter   string
	language string
	json     bool
	parallel int
}

// searchCommand creates the search command.
func (c *CLI) searchCommand() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <username>...",
		Short: "List the public repositories of GitHub users",
		Long: `List up to page_size public repositories of each user, most recently updated first.

Filters apply after the fetch: --filter keeps repositories whose name contains
the text (case-insensitive), --language keeps one primary language.`,
		Example: `  repoexplorer search torvalds
  repoexplorer search octocat --language Go --filter hello
  repoexplorer search alice bob --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSearch(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.filter, "filter", "f", "", "only show repositories whose name contains this text")
	cmd.Flags().StringVarP(&opts.language, "language", "l", "", "only show repositories with this primary language")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the result as JSON")
	cmd.Flags().IntVar(&opts.parallel, "parallel", 4, "number of users searched at the same time")

	return cmd
}

func (c *CLI) runSearch(ctx context.Context, usernames []string, opts searchOptions) error {
	logger := loggerFromContext(ctx)
	client := c.newClient(ctx)

	store, err := c.openHistory(ctx)
	if err != nil {
		logger.Warn("history unavailable", "err", err)
		store = history.Nop{}
	}
	defer store.Close()

	var spinner *Spinner
	if !opts.json {
		spinner = newSpinnerWithContext(ctx, spinnerMessage(usernames))
		spinner.Start()
	}
	prog := newProgress(logger)

	views := make([]search.View, len(usernames))
	var finished atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.parallel, 1))
	for i, name := range usernames {
		g.Go(func() error {
			ctrl := search.New(client,
				search.WithPageSize(c.cfg.PageSize),
				search.WithLogger(logger),
			)
			ctrl.Search(gctx, name)
			ctrl.SetNameFilter(opts.filter)
			views[i] = ctrl.SetLanguageFilter(opts.language)
			c.recordSearch(gctx, store, views[i])
			if n := finished.Add(1); spinner != nil && len(usernames) > 1 {
				spinner.SetMessage(fmt.Sprintf("Fetched %d of %d users...", n, len(usernames)))
			}
			return nil
		})
	}
	_ = g.Wait()

	if spinner != nil {
		spinner.Stop()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	failed := 0
	for _, v := range views {
		if v.Failed() {
			failed++
		}
	}
	prog.done(fmt.Sprintf("Searched %d of %d users", len(views)-failed, len(views)))

	if opts.json {
		var out any = views
		if len(views) == 1 {
			out = views[0]
		}
		if err := writeViewJSON(os.Stdout, out); err != nil {
			return err
		}
	} else {
		now := time.Now()
		for i, v := range views {
			if i > 0 {
				fmt.Println()
			}
			fmt.Print(renderView(v, now))
		}
	}

	if failed > 0 {
		if !opts.json {
			return ErrReported
		}
		if len(views) == 1 {
			return fmt.Errorf("search failed: %s", views[0].Error)
		}
		return fmt.Errorf("search failed for %d of %d users", failed, len(views))
	}
	return nil
}

func spinnerMessage(usernames []string) string {
	if len(usernames) == 1 {
		return fmt.Sprintf("Fetching repositories for %s...", strings.TrimSpace(usernames[0]))
	}
	return fmt.Sprintf("Fetching repositories for %d users...", len(usernames))
}
