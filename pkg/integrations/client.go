package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/repoexplorer/pkg/errors"
	"github.com/matzehuels/repoexplorer/pkg/observability"
)

// maxBodySize bounds how much of a response body is read into memory.
const maxBodySize = 16 << 20

// Client provides shared HTTP functionality for remote API clients.
// It applies default headers, reports requests to the observability hooks,
// and classifies failures into [errors.Code] values. It never retries.
type Client struct {
	http    *http.Client
	headers map[string]string
}

// NewClient creates a Client with the given default headers and timeout.
// Headers are applied to all requests made through this client.
// Pass nil for headers if no default headers are needed, and a zero
// timeout to use [DefaultTimeout].
func NewClient(headers map[string]string, timeout time.Duration) *Client {
	return &Client{
		http:    NewHTTPClient(timeout),
		headers: headers,
	}
}

// WithHTTPClient replaces the underlying *http.Client, keeping its timeout
// unless it has none.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	if h == nil {
		return c
	}
	if h.Timeout == 0 {
		h.Timeout = c.http.Timeout
	}
	c.http = h
	return c
}

// Timeout reports the per-request deadline.
func (c *Client) Timeout() time.Duration {
	return c.http.Timeout
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.do(ctx, http.MethodGet, url, nil, nil, v)
}

// PostJSON encodes body as JSON, POSTs it to url and decodes the response
// into v. Non-2xx responses are returned as ErrCodeRemoteStatus errors.
func (c *Client) PostJSON(ctx context.Context, url string, body, v any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode request")
	}
	return c.do(ctx, http.MethodPost, url, bytes.NewReader(payload),
		map[string]string{"Content-Type": "application/json"}, v)
}

// PostForm POSTs an url-encoded form and decodes the JSON response into v.
func (c *Client) PostForm(ctx context.Context, url, form string, v any) error {
	return c.do(ctx, http.MethodPost, url, bytes.NewReader([]byte(form)),
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"}, v)
}

// Response is a raw upstream reply.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Forward sends body to url unmodified and returns the upstream status and
// body whatever the status is. Only transport failures produce an error.
func (c *Client) Forward(ctx context.Context, method, url string, body []byte, headers map[string]string) (*Response, error) {
	resp, err := c.send(ctx, method, url, bytes.NewReader(body), headers)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, classifyTransport(err, "read %s", url)
	}
	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

func (c *Client) do(ctx context.Context, method, url string, body io.Reader, headers map[string]string, v any) error {
	resp, err := c.send(ctx, method, url, body, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	if err := decodeJSON(io.LimitReader(resp.Body, maxBodySize), v); err != nil {
		return classifyTransport(err, "decode response from %s", url)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, url string, body io.Reader, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	host, path := req.URL.Host, req.URL.Path
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, host, path, err)
		return nil, classifyTransport(err, "%s %s", method, url)
	}
	hooks.OnResponse(ctx, method, host, path, resp.StatusCode, time.Since(start))
	return resp, nil
}

// decodeJSON decodes with json.Number so that untyped payloads keep their
// numeric precision.
func decodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return dec.Decode(v)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	// Drain a little so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	cause := &errors.StatusError{
		StatusCode: resp.StatusCode,
		Status:     http.StatusText(resp.StatusCode),
	}
	return errors.Wrap(errors.ErrCodeRemoteStatus, cause, "API error: %s", cause)
}

func classifyTransport(err error, format string, args ...any) error {
	if IsTimeout(err) {
		return errors.Wrap(errors.ErrCodeTimeout, err, "request timed out")
	}
	return errors.Wrap(errors.ErrCodeNetwork, err, format, args...)
}
