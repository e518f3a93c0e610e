package integrations

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/repoexplorer/pkg/errors"
)

func TestNewClient(t *testing.T) {
	headers := map[string]string{"Authorization": "Bearer token"}
	client := NewClient(headers, time.Minute)

	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
	if client.http == nil {
		t.Error("NewClient() http client is nil")
	}
	if client.Timeout() != time.Minute {
		t.Errorf("Timeout() = %v, want %v", client.Timeout(), time.Minute)
	}
	if client.headers["Authorization"] != "Bearer token" {
		t.Error("NewClient() headers not set correctly")
	}
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(nil, 0)

	if client.headers != nil {
		t.Error("NewClient() should allow nil headers")
	}
	if client.Timeout() != DefaultTimeout {
		t.Errorf("Timeout() = %v, want %v", client.Timeout(), DefaultTimeout)
	}
}

func TestWithHTTPClientKeepsTimeout(t *testing.T) {
	client := NewClient(nil, 5*time.Second).WithHTTPClient(&http.Client{})
	if client.Timeout() != 5*time.Second {
		t.Errorf("Timeout() = %v, want 5s", client.Timeout())
	}
}

func TestClientGet(t *testing.T) {
	type response struct {
		Message string `json:"message"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		json.NewEncoder(w).Encode(response{Message: "hello"})
	}))
	defer server.Close()

	client := NewClient(nil, 0).WithHTTPClient(server.Client())

	var resp response
	err := client.Get(context.Background(), server.URL, &resp)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if resp.Message != "hello" {
		t.Errorf("Get() message = %q, want %q", resp.Message, "hello")
	}
}

func TestClientPostJSON(t *testing.T) {
	var (
		gotMethod, gotType, gotAuth string
		gotBody                     map[string]any
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"count": 12345678901234567890}`))
	}))
	defer server.Close()

	client := NewClient(map[string]string{"Authorization": "Bearer t"}, 0).WithHTTPClient(server.Client())

	var resp map[string]any
	err := client.PostJSON(context.Background(), server.URL, map[string]string{"query": "q"}, &resp)
	if err != nil {
		t.Fatalf("PostJSON() error: %v", err)
	}
	if gotMethod != http.MethodPost {
		t.Errorf("method = %s, want POST", gotMethod)
	}
	if gotType != "application/json" {
		t.Errorf("Content-Type = %q", gotType)
	}
	if gotAuth != "Bearer t" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBody["query"] != "q" {
		t.Errorf("body = %v", gotBody)
	}
	// Numbers decode as json.Number.
	if n, ok := resp["count"].(json.Number); !ok || n.String() != "12345678901234567890" {
		t.Errorf("count = %#v, want json.Number", resp["count"])
	}
}

func TestClientStatusErrors(t *testing.T) {
	tests := []struct {
		name string
		code int
	}{
		{"400 Bad Request", http.StatusBadRequest},
		{"401 Unauthorized", http.StatusUnauthorized},
		{"404 Not Found", http.StatusNotFound},
		{"502 Bad Gateway", http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
			}))
			defer server.Close()

			client := NewClient(nil, 0).WithHTTPClient(server.Client())

			var resp map[string]any
			err := client.Get(context.Background(), server.URL, &resp)
			if !errors.Is(err, errors.ErrCodeRemoteStatus) {
				t.Fatalf("Get() error = %v, want REMOTE_STATUS", err)
			}
			if got := errors.StatusCode(err); got != tt.code {
				t.Errorf("StatusCode() = %d, want %d", got, tt.code)
			}
			if got := errors.UserMessage(err); got != "API error: "+tt.name {
				t.Errorf("UserMessage() = %q", got)
			}
		})
	}
}

func TestClientUndecodableBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client := NewClient(nil, 0).WithHTTPClient(server.Client())

	var resp map[string]any
	err := client.Get(context.Background(), server.URL, &resp)
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("Get() error = %v, want NETWORK_ERROR", err)
	}
}

func TestClientTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(nil, time.Second)

	err := client.Get(context.Background(), url, nil)
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("Get() error = %v, want NETWORK_ERROR", err)
	}
}

func TestClientTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(nil, 50*time.Millisecond).WithHTTPClient(server.Client())

	err := client.Get(context.Background(), server.URL, nil)
	if !errors.Is(err, errors.ErrCodeTimeout) {
		t.Errorf("Get() error = %v, want TIMEOUT", err)
	}
}

func TestClientForwardPassesStatusThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"q":1}` {
			t.Errorf("body = %s", body)
		}
		if r.Header.Get("X-Extra") != "yes" {
			t.Error("missing request header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"rate limited"}`))
	}))
	defer server.Close()

	client := NewClient(nil, 0).WithHTTPClient(server.Client())

	resp, err := client.Forward(context.Background(), http.MethodPost, server.URL, []byte(`{"q":1}`), map[string]string{"X-Extra": "yes"})
	if err != nil {
		t.Fatalf("Forward() error: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d", resp.StatusCode)
	}
	if resp.ContentType != "application/json" {
		t.Errorf("ContentType = %q", resp.ContentType)
	}
	if string(resp.Body) != `{"message":"rate limited"}` {
		t.Errorf("Body = %s", resp.Body)
	}
}

func TestIsTimeout(t *testing.T) {
	if IsTimeout(nil) {
		t.Error("IsTimeout(nil) = true")
	}
	if !IsTimeout(context.DeadlineExceeded) {
		t.Error("IsTimeout(DeadlineExceeded) = false")
	}
	if IsTimeout(context.Canceled) {
		t.Error("IsTimeout(Canceled) = true")
	}
}

func TestJoinURL(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"https://a.test", "graphql", "https://a.test/graphql"},
		{"https://a.test/", "/graphql", "https://a.test/graphql"},
		{"https://a.test/api", "github", "https://a.test/api/github"},
	}

	for _, tt := range tests {
		if got := JoinURL(tt.base, tt.path); got != tt.want {
			t.Errorf("JoinURL(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
		}
	}
}
