// Package pkg provides the libraries behind repoexplorer, a GitHub
// repository explorer.
//
// # Overview
//
// repoexplorer looks up a GitHub user's public repositories through the
// GraphQL API, normalizes them, and lets the caller narrow the list by name
// and primary language. The pkg directory is organized into these areas:
//
//  1. [repo] - Domain types (repository, filter state, language facets)
//  2. [search] - The search controller that owns state and ordering
//  3. [integrations] - HTTP clients for remote APIs (GitHub GraphQL, OAuth)
//  4. [relay] - A credential-holding HTTP relay in front of the GraphQL API
//  5. [cache], [history], [session], [config] - Supporting infrastructure
//
// # Architecture
//
// The data flow of a single search:
//
//	username
//	   ↓
//	[search.Controller] (validate, supersede older searches)
//	   ↓
//	[github.Client] (GraphQL query, directly or through the relay)
//	   ↓
//	[github.NormalizeAll] (raw nodes → [repo.Repository])
//	   ↓
//	[repo.Filter] + [repo.ExtractLanguages] (visible list and facets)
//	   ↓
//	[search.View]
//
// # Quick Start
//
//	client := github.NewClient(os.Getenv("GITHUB_TOKEN"))
//	ctrl := search.New(client)
//
//	v := ctrl.Search(ctx, "octocat")
//	v = ctrl.SetLanguageFilter("Go")
//	for _, r := range v.Visible {
//	    fmt.Println(r.Name, r.StargazerCount)
//	}
//
// # Main Packages
//
// [repo] - Repository values, filter predicate, facet extraction, and the
// formatting helpers used by the CLI (relative update times, language colors).
//
// [search] - [search.Controller] runs searches with last-request-wins
// semantics. Filters apply synchronously to the current result set, and
// every change is published as an immutable [search.View].
//
// [integrations] - The shared HTTP client with timeouts, error
// classification, and observability hooks. [integrations/github] builds the
// GraphQL repository query, maps GraphQL errors to error kinds, and runs the
// OAuth device flow used by the login command.
//
// [relay] - An HTTP server that adds a server-side token to forwarded GraphQL
// queries, collapses identical concurrent queries, and caches clean answers.
//
// [cache] - Byte caches with TTL: null, in-memory LRU, file, and Redis.
//
// [history] - Recently searched usernames, stored in a JSON file or MongoDB.
//
// [session] - Login sessions for the CLI, stored as files.
//
// [config] - Layered configuration: defaults, TOML file, .env, environment.
//
// [errors] - Structured errors with codes and user-facing messages.
//
// [observability] - Hook interfaces for HTTP and search events.
//
// [repo]: https://pkg.go.dev/github.com/matzehuels/repoexplorer/pkg/repo
// [search]: https://pkg.go.dev/github.com/matzehuels/repoexplorer/pkg/search
// [integrations]: https://pkg.go.dev/github.com/matzehuels/repoexplorer/pkg/integrations
// [integrations/github]: https://pkg.go.dev/github.com/matzehuels/repoexplorer/pkg/integrations/github
// [relay]: https://pkg.go.dev/github.com/matzehuels/repoexplorer/pkg/relay
// [cache]: https://pkg.go.dev/github.com/matzehuels/repoexplorer/pkg/cache
// [history]: https://pkg.go.dev/github.com/matzehuels/repoexplorer/pkg/history
// [session]: https://pkg.go.dev/github.com/matzehuels/repoexplorer/pkg/session
// [config]: https://pkg.go.dev/github.com/matzehuels/repoexplorer/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/repoexplorer/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/repoexplorer/pkg/observability
// [search.Controller]: https://pkg.go.dev/github.com/matzehuels/repoexplorer/pkg/search#Controller
// [search.View]: https://pkg.go.dev/github.com/matzehuels/repoexplorer/pkg/search#View
//
// [github.Client]: https://pkg.go.dev/github.com/matzehuels/repoexplorer/pkg/integrations/github#Client
// [github.NormalizeAll]: https://pkg.go.dev/github.com/matzehuels/repoexplorer/pkg/integrations/github#NormalizeAll
// [repo.Repository]: https://pkg.go.dev/github.com/matzehuels/repoexplorer/pkg/repo#Repository
// [repo.Filter]: https://pkg.go.dev/github.com/matzehuels/repoexplorer/pkg/repo#Filter
// [repo.ExtractLanguages]: https://pkg.go.dev/github.com/matzehuels/repoexplorer/pkg/repo#ExtractLanguages
package pkg
