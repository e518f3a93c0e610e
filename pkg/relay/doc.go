// Package relay implements a small HTTP server that forwards GitHub GraphQL
// queries with a server-side token.
//
// Browsers and other untrusted clients cannot hold a GitHub token. They post
// their GraphQL body to the relay instead, and the relay adds the
// credential:
//
//	POST /api/github                              forward a GraphQL body
//	GET  /api/users/{username}/repositories?q=&language=
//	                                              run a search server-side
//	GET  /healthz                                 liveness
//
// Identical concurrent request bodies are collapsed into one upstream call,
// and successful answers can be kept in a [cache.Cache].
//
// Error bodies follow one shape, {"error": "..."}:
//
//   - 405 Method not allowed
//   - 500 GitHub token not configured on server
//   - 500 Failed to fetch from GitHub API
//
// Upstream non-2xx answers are passed through with their status and body.
//
// [cache.Cache]: github.com/matzehuels/repoexplorer/pkg/cache.Cache
package relay
