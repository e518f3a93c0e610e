// Package github provides a client for the GitHub GraphQL API.
//
// # Overview
//
// This package fetches the public repositories of a GitHub user
// (https://api.github.com/graphql) and converts the raw GraphQL nodes into
// [repo.Repository] values.
//
// # Usage
//
//	client := github.NewClient(token)
//
//	nodes, err := client.FetchRepositories(ctx, "octocat", github.DefaultPageSize)
//	if err != nil {
//	    switch github.KindOf(err) {
//	    case github.KindNotFound:
//	        // ...
//	    }
//	}
//
//	repos := github.NormalizeAll(nodes)
//
// Results are the user's public repositories ordered by last update,
// newest first, exactly as GitHub returns them. The client performs one
// request per call. It does not cache or retry.
//
// # Authentication
//
// GitHub's GraphQL API requires a token. [NewClient] sends it as a bearer
// credential when one is given. [NewProxyClient] instead targets a relay
// server (see package relay) that injects the credential server-side, so
// the token never leaves the server.
//
// [OAuthClient] implements the device authorization flow for obtaining a
// token interactively, and [Client.FetchUser] resolves the token's owner.
//
// # Errors
//
// [KindOf] classifies failures:
//
//   - KindTransport: network failure, timeout, or unreadable response
//   - KindRemoteStatus: non-2xx status, see [StatusCode]
//   - KindRemoteError: GraphQL errors payload, message is the first error's
//   - KindNotFound: the user does not exist
//
// # Normalization
//
// [Normalize] is total: missing or malformed fields fall back to defaults
// (nil description or language, zero counts, zero time) instead of failing.
//
// [repo.Repository]: github.com/matzehuels/repoexplorer/pkg/repo.Repository
package github
