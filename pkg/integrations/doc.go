// Package integrations provides the shared HTTP client for remote APIs.
//
// # Overview
//
// API clients such as [github] embed a [Client] and build their
// endpoint-specific requests on top of it:
//
//	c := integrations.NewClient(map[string]string{"User-Agent": "repoexplorer"}, 0)
//	var out response
//	err := c.PostJSON(ctx, "https://api.github.com/graphql", body, &out)
//
// The client:
//   - applies default headers to every request
//   - bounds each request with a timeout ([DefaultTimeout] unless configured)
//   - reports requests, responses, and failures to [observability.HTTP]
//   - decodes JSON with json.Number so untyped payloads survive intact
//
// It does not retry or cache. Callers that want caching put it
// in front of the client (see the relay server).
//
// # Error Classification
//
// Failures are returned as [errors.Error] values:
//
//   - ErrCodeNetwork: connection failures and undecodable bodies
//   - ErrCodeTimeout: the request deadline expired
//   - ErrCodeRemoteStatus: a non-2xx response; the cause is an
//     [errors.StatusError] holding the status code
//
// [Client.Forward] is the exception: it returns any upstream status and body
// unchanged, for callers that relay responses verbatim.
//
// [github]: github.com/matzehuels/repoexplorer/pkg/integrations/github
// [observability.HTTP]: github.com/matzehuels/repoexplorer/pkg/observability.HTTP
// [errors.Error]: github.com/matzehuels/repoexplorer/pkg/errors.Error
// [errors.StatusError]: github.com/matzehuels/repoexplorer/pkg/errors.StatusError
package integrations
