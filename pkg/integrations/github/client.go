package github

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/repoexplorer/pkg/buildinfo"
	"github.com/matzehuels/repoexplorer/pkg/errors"
	"github.com/matzehuels/repoexplorer/pkg/integrations"
)

const (
	// DefaultEndpoint is the public GitHub GraphQL API.
	DefaultEndpoint = "https://api.github.com/graphql"

	// DefaultRESTURL is the GitHub REST API base, used for the authenticated user lookup.
	DefaultRESTURL = "https://api.github.com"

	// DefaultPageSize is the number of repositories requested per search.
	DefaultPageSize = 30

	// MaxPageSize is the largest page GitHub accepts for a connection.
	MaxPageSize = 100

	// RelayPath is where a relay server accepts GraphQL requests.
	RelayPath = "/api/github"
)

// repositoriesQuery lists a user's public repositories, most recently
// updated first.
const repositoriesQuery = `query($username: String!, $first: Int!) {
  user(login: $username) {
    repositories(first: $first, orderBy: {field: UPDATED_AT, direction: DESC}, privacy: PUBLIC) {
      nodes {
        id
        name
        description
        url
        primaryLanguage {
          name
        }
        stargazerCount
        forkCount
        updatedAt
      }
    }
  }
}`

// Client queries the GitHub GraphQL API for a user's repositories.
// It performs exactly one request per call and never caches or retries.
type Client struct {
	*integrations.Client
	endpoint      string
	restURL       string
	authenticated bool
}

// Option configures a [Client].
type Option func(*options)

type options struct {
	endpoint string
	restURL  string
	timeout  time.Duration
	headers  map[string]string
	http     *http.Client
}

// WithEndpoint overrides the GraphQL endpoint.
func WithEndpoint(url string) Option {
	return func(o *options) {
		if url != "" {
			o.endpoint = url
		}
	}
}

// WithRESTURL overrides the REST API base URL.
func WithRESTURL(url string) Option {
	return func(o *options) {
		if url != "" {
			o.restURL = strings.TrimSuffix(url, "/")
		}
	}
}

// WithTimeout bounds every request. Zero keeps [integrations.DefaultTimeout].
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		if ua != "" {
			o.headers["User-Agent"] = ua
		}
	}
}

// WithHTTPClient routes requests through a custom transport.
func WithHTTPClient(h *http.Client) Option {
	return func(o *options) { o.http = h }
}

// NewClient creates a GitHub client. The token is optional: when empty no
// Authorization header is sent, which GitHub's GraphQL API rejects with 401.
func NewClient(token string, opts ...Option) *Client {
	o := options{
		endpoint: DefaultEndpoint,
		restURL:  DefaultRESTURL,
		headers: map[string]string{
			"Accept":     "application/json",
			"User-Agent": buildinfo.UserAgent(),
		},
	}
	if token != "" {
		o.headers["Authorization"] = "Bearer " + token
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Client{
		Client:        integrations.NewClient(o.headers, o.timeout).WithHTTPClient(o.http),
		endpoint:      o.endpoint,
		restURL:       o.restURL,
		authenticated: token != "",
	}
}

// NewProxyClient creates a client that sends its queries to a relay server
// at relayURL instead of GitHub. The relay holds the credential, so the
// client sends none.
func NewProxyClient(relayURL string, opts ...Option) *Client {
	opts = append([]Option{WithEndpoint(integrations.JoinURL(relayURL, RelayPath))}, opts...)
	return NewClient("", opts...)
}

// Endpoint returns the URL queries are posted to.
func (c *Client) Endpoint() string { return c.endpoint }

// Authenticated reports whether the client sends a bearer token.
func (c *Client) Authenticated() bool { return c.authenticated }

// FetchRepositories returns up to first public repositories of username as
// raw GraphQL nodes, in the order GitHub returned them.
//
// A first outside 1..[MaxPageSize] is replaced by [DefaultPageSize] or
// clamped to [MaxPageSize]. Use [KindOf] to classify the returned error.
func (c *Client) FetchRepositories(ctx context.Context, username string, first int) ([]RawNode, error) {
	first = clampPageSize(first)

	req := graphQLRequest{
		Query: repositoriesQuery,
		Variables: map[string]any{
			"username": username,
			"first":    first,
		},
	}

	var resp repositoriesResponse
	if err := c.PostJSON(ctx, c.endpoint, req, &resp); err != nil {
		return nil, err
	}

	if len(resp.Errors) > 0 {
		e := resp.Errors[0]
		if e.Type == "NOT_FOUND" {
			return nil, errors.New(errors.ErrCodeNotFound, "user %q not found", username)
		}
		return nil, errors.New(errors.ErrCodeRemoteError, "%s", e.Message)
	}
	if resp.Data == nil || resp.Data.User == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "user %q not found", username)
	}

	nodes := resp.Data.User.Repositories.Nodes
	if len(nodes) > first {
		nodes = nodes[:first]
	}
	if nodes == nil {
		nodes = []RawNode{}
	}
	return nodes, nil
}

// FetchUser returns the user the client's token belongs to.
func (c *Client) FetchUser(ctx context.Context) (*User, error) {
	if !c.authenticated {
		return nil, errors.New(errors.ErrCodeUnauthorized, "no token configured")
	}
	var user User
	if err := c.Get(ctx, c.restURL+"/user", &user); err != nil {
		if errors.StatusCode(err) == http.StatusUnauthorized {
			return nil, errors.Wrap(errors.ErrCodeUnauthorized, err, "token rejected")
		}
		return nil, err
	}
	return &user, nil
}

func clampPageSize(n int) int {
	switch {
	case n <= 0:
		return DefaultPageSize
	case n > MaxPageSize:
		return MaxPageSize
	default:
		return n
	}
}
