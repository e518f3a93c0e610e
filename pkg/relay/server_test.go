package relay

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/repoexplorer/pkg/cache"
	"github.com/matzehuels/repoexplorer/pkg/integrations"
	"github.com/matzehuels/repoexplorer/pkg/search"
)

const reposBody = `{"data":{"user":{"repositories":{"nodes":[
 {"id":"R_1","name":"nodejs-api-starter","url":"https://github.com/alice/nodejs-api-starter","primaryLanguage":{"name":"TypeScript"},"stargazerCount":42,"forkCount":7,"updatedAt":"2025-06-01T10:00:00Z"},
 {"id":"R_2","name":"react-portfolio","url":"https://github.com/alice/react-portfolio","primaryLanguage":{"name":"TypeScript"},"stargazerCount":1,"forkCount":0,"updatedAt":"2025-05-01T10:00:00Z"},
 {"id":"R_3","name":"awesome-python-scripts","url":"https://github.com/alice/awesome-python-scripts","primaryLanguage":{"name":"Python"},"stargazerCount":0,"forkCount":0,"updatedAt":"2025-04-01T10:00:00Z"}
]}}}}`

type upstream struct {
	*httptest.Server
	calls   atomic.Int32
	mu      sync.Mutex
	lastReq *http.Request
	handler func(w http.ResponseWriter, body []byte)
}

func newUpstream(t *testing.T, handler func(w http.ResponseWriter, body []byte)) *upstream {
	t.Helper()
	u := &upstream{handler: handler}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.calls.Add(1)
		body, _ := io.ReadAll(r.Body)
		u.mu.Lock()
		u.lastReq = r.Clone(context.Background())
		u.mu.Unlock()
		u.handler(w, body)
	}))
	t.Cleanup(u.Close)
	return u
}

func staticUpstream(t *testing.T, status int, body string) *upstream {
	return newUpstream(t, func(w http.ResponseWriter, _ []byte) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	})
}

func testRelay(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	s := New(cfg)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Close()
	})
	return ts
}

func post(t *testing.T, url, body string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Post(url+"/api/github", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

func TestHealthz(t *testing.T) {
	ts := testRelay(t, Config{})

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	ts := testRelay(t, Config{})

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
}

func TestGraphQLMethodNotAllowed(t *testing.T) {
	up := staticUpstream(t, http.StatusOK, reposBody)
	ts := testRelay(t, Config{Upstream: up.URL, Token: "server-token"})

	resp, err := http.Get(ts.URL + "/api/github")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, ErrMethodNotAllowed, body["error"])
	assert.Zero(t, up.calls.Load())
}

func TestGraphQLNoToken(t *testing.T) {
	up := staticUpstream(t, http.StatusOK, reposBody)
	ts := testRelay(t, Config{Upstream: up.URL})

	resp, body := post(t, ts.URL, `{"query":"q"}`)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error":"GitHub token not configured on server"}`, body)
	assert.Zero(t, up.calls.Load())
}

func TestGraphQLForwards(t *testing.T) {
	up := staticUpstream(t, http.StatusOK, reposBody)
	ts := testRelay(t, Config{Upstream: up.URL, Token: "server-token"})

	resp, body := post(t, ts.URL, `{"query":"q","variables":{"username":"alice","first":30}}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, reposBody, body)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	up.mu.Lock()
	defer up.mu.Unlock()
	assert.Equal(t, "Bearer server-token", up.lastReq.Header.Get("Authorization"))
	assert.Equal(t, UserAgent, up.lastReq.Header.Get("User-Agent"))
	assert.Equal(t, http.MethodPost, up.lastReq.Method)
}

func TestGraphQLPassesUpstreamErrorsThrough(t *testing.T) {
	up := staticUpstream(t, http.StatusUnauthorized, `{"message":"Bad credentials"}`)
	ts := testRelay(t, Config{Upstream: up.URL, Token: "bad"})

	resp, body := post(t, ts.URL, `{"query":"q"}`)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Bad credentials"}`, body)
}

func TestGraphQLUpstreamUnreachable(t *testing.T) {
	up := staticUpstream(t, http.StatusOK, reposBody)
	url := up.URL
	up.Close()

	ts := testRelay(t, Config{Upstream: url, Token: "t", Timeout: time.Second})

	resp, body := post(t, ts.URL, `{"query":"q"}`)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Failed to fetch from GitHub API"}`, body)
}

func TestGraphQLCachesSuccess(t *testing.T) {
	up := staticUpstream(t, http.StatusOK, reposBody)
	mem, err := cache.NewMemoryCache(16)
	require.NoError(t, err)
	ts := testRelay(t, Config{Upstream: up.URL, Token: "t", Cache: mem, CacheTTL: time.Minute})

	for i := 0; i < 3; i++ {
		resp, body := post(t, ts.URL, `{"query":"q","variables":{"username":"alice"}}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, reposBody, body)
	}
	assert.Equal(t, int32(1), up.calls.Load())

	post(t, ts.URL, `{"query":"q","variables":{"username":"bob"}}`)
	assert.Equal(t, int32(2), up.calls.Load(), "different bodies are cached separately")
}

func TestGraphQLDoesNotCacheErrors(t *testing.T) {
	up := staticUpstream(t, http.StatusOK, `{"data":{"user":null},"errors":[{"type":"NOT_FOUND","message":"nope"}]}`)
	mem, _ := cache.NewMemoryCache(16)
	ts := testRelay(t, Config{Upstream: up.URL, Token: "t", Cache: mem})

	post(t, ts.URL, `{"query":"q"}`)
	post(t, ts.URL, `{"query":"q"}`)

	assert.Equal(t, int32(2), up.calls.Load())
	assert.Zero(t, mem.Len())
}

func TestGraphQLCollapsesConcurrentRequests(t *testing.T) {
	release := make(chan struct{})
	up := newUpstream(t, func(w http.ResponseWriter, _ []byte) {
		<-release
		w.Write([]byte(reposBody))
	})
	ts := testRelay(t, Config{Upstream: up.URL, Token: "t"})

	const n = 5
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := http.Post(ts.URL+"/api/github", "application/json", strings.NewReader(`{"query":"same"}`))
			if err == nil {
				resp.Body.Close()
			}
		}()
	}

	// Let the requests pile up behind the first upstream call.
	require.Eventually(t, func() bool { return up.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Less(t, up.calls.Load(), int32(n))
}

func TestRepositoriesEndpoint(t *testing.T) {
	up := staticUpstream(t, http.StatusOK, reposBody)
	ts := testRelay(t, Config{Upstream: up.URL, Token: "t"})

	resp, err := http.Get(ts.URL + "/api/users/alice/repositories?q=api&language=typescript")
	require.NoError(t, err)
	defer resp.Body.Close()

	var v search.View
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice", v.Username)
	assert.Equal(t, search.PhaseSucceeded, v.Phase)
	assert.Len(t, v.Repositories, 3)
	require.Len(t, v.Visible, 1)
	assert.Equal(t, "nodejs-api-starter", v.Visible[0].Name)
	assert.Equal(t, []string{"TypeScript", "Python"}, v.Languages)

	up.mu.Lock()
	defer up.mu.Unlock()
	assert.Equal(t, "Bearer t", up.lastReq.Header.Get("Authorization"))
}

func TestRepositoriesEndpointNotFound(t *testing.T) {
	up := staticUpstream(t, http.StatusOK, `{"data":{"user":null}}`)
	ts := testRelay(t, Config{Upstream: up.URL, Token: "t"})

	resp, err := http.Get(ts.URL + "/api/users/ghost-user-404/repositories")
	require.NoError(t, err)
	defer resp.Body.Close()

	var v search.View
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, `User "ghost-user-404" not found`, v.Error)
}

func TestRepositoriesEndpointUpstreamStatus(t *testing.T) {
	up := staticUpstream(t, http.StatusBadGateway, `oops`)
	ts := testRelay(t, Config{Upstream: up.URL, Token: "t"})

	resp, err := http.Get(ts.URL + "/api/users/alice/repositories")
	require.NoError(t, err)
	defer resp.Body.Close()

	var v search.View
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "Failed to fetch repositories: GitHub API error: 502 Bad Gateway", v.Error)
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	s := New(Config{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("ListenAndServe did not return after cancel")
	}
}

func TestCacheable(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   bool
	}{
		{"success", http.StatusOK, reposBody, true},
		{"graphql errors", http.StatusOK, `{"errors":[{"message":"x"}]}`, false},
		{"null data", http.StatusOK, `{"data":null}`, false},
		{"not json", http.StatusOK, `<html>`, false},
		{"bad status", http.StatusBadGateway, reposBody, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &integrations.Response{StatusCode: tt.status, Body: []byte(tt.body)}
			assert.Equal(t, tt.want, cacheable(resp))
		})
	}
}
