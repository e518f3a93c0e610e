// Package search drives a repository search from a typed username to a
// renderable [View].
//
// A [Controller] validates the username, fetches the user's repositories
// through a [Fetcher], normalizes them, and keeps the current filter state.
// Every state change produces a new View, which holds everything a
// renderer needs: the full result set, the visible subset after filtering,
// the language facets, and a single error or notice string.
//
// # Phases
//
//	Idle -> Validating -> Fetching -> Succeeded | Failed
//
// A blank username fails validation without touching the network and keeps
// the previous results and filters on screen.
//
// # Concurrency
//
// Searches may overlap. Only the most recently started search is allowed to
// write its outcome: each search takes a generation number, and results of
// an older generation are dropped. Starting a search also cancels the
// context of the one it supersedes.
package search
