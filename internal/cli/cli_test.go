package cli

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/matzehuels/repoexplorer/pkg/history"
	"github.com/matzehuels/repoexplorer/pkg/search"
)

const octocatRepos = `{"data":{"user":{"repositories":{"nodes":[
  {"id":"R_1","name":"hello-world","description":"My first repository","url":"https://github.com/octocat/hello-world",
   "primaryLanguage":{"name":"Go"},"stargazerCount":1500,"forkCount":3,"updatedAt":"2024-05-01T12:00:00Z"},
  {"id":"R_2","name":"dotfiles","description":null,"url":"https://github.com/octocat/dotfiles",
   "primaryLanguage":null,"stargazerCount":2,"forkCount":0,"updatedAt":"2024-04-01T12:00:00Z"},
  {"id":"R_3","name":"linguist","description":"Language detection","url":"https://github.com/octocat/linguist",
   "primaryLanguage":{"name":"Ruby"},"stargazerCount":40,"forkCount":1,"updatedAt":"2024-03-01T12:00:00Z"}
]}}}}`

const ghostResponse = `{"data":{"user":null},"errors":[{"type":"NOT_FOUND","message":"Could not resolve to a User with the login of 'ghost'."}]}`

// graphQLStub answers repository queries: "ghost" is unknown, "empty" has
// no repositories, everyone else owns octocatRepos.
type graphQLStub struct {
	*httptest.Server

	mu    sync.Mutex
	auth  []string
	paths []string
}

func newGraphQLStub(t *testing.T) *graphQLStub {
	t.Helper()
	s := &graphQLStub{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Variables struct {
				Username string `json:"username"`
			} `json:"variables"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		s.mu.Lock()
		s.auth = append(s.auth, r.Header.Get("Authorization"))
		s.paths = append(s.paths, r.URL.Path)
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch req.Variables.Username {
		case "ghost":
			io.WriteString(w, ghostResponse)
		case "empty":
			io.WriteString(w, `{"data":{"user":{"repositories":{"nodes":[]}}}}`)
		default:
			io.WriteString(w, octocatRepos)
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *graphQLStub) lastAuth() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.auth) == 0 {
		return ""
	}
	return s.auth[len(s.auth)-1]
}

// isolateEnv points every config, session, history and cache location at a
// temporary home.
func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, ".cache"))
	for _, k := range []string{
		"GITHUB_TOKEN", "VITE_GITHUB_TOKEN",
		"REPOEXPLORER_ENDPOINT", "REPOEXPLORER_PROXY_URL",
		"REPOEXPLORER_REDIS_URL", "REPOEXPLORER_MONGO_URI",
	} {
		t.Setenv(k, "")
	}
	return home
}

// execute runs the root command with args and returns what it printed on
// stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	oldStdout := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = oldStdout }()

	out := make(chan string)
	go func() {
		b, _ := io.ReadAll(r)
		out <- string(b)
	}()

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	runErr := root.ExecuteContext(context.Background())

	w.Close()
	return <-out, runErr
}

func TestSearchJSON(t *testing.T) {
	isolateEnv(t)
	stub := newGraphQLStub(t)

	out, err := execute(t, "search", "octocat", "--json", "--endpoint", stub.URL, "--token", "tok")
	if err != nil {
		t.Fatalf("search error: %v", err)
	}

	var v search.View
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if v.Username != "octocat" || v.Phase != search.PhaseSucceeded {
		t.Errorf("view = %+v", v)
	}
	if len(v.Repositories) != 3 || len(v.Visible) != 3 {
		t.Errorf("got %d repositories, %d visible, want 3", len(v.Repositories), len(v.Visible))
	}
	if strings.Join(v.Languages, ",") != "Go,Ruby" {
		t.Errorf("languages = %v", v.Languages)
	}
	if got := stub.lastAuth(); got != "Bearer tok" {
		t.Errorf("Authorization = %q, want bearer token", got)
	}
}

func TestSearchFilters(t *testing.T) {
	isolateEnv(t)
	stub := newGraphQLStub(t)

	out, err := execute(t, "search", "octocat", "--json", "--endpoint", stub.URL, "--token", "tok",
		"--filter", "HELLO", "--language", "Go")
	if err != nil {
		t.Fatalf("search error: %v", err)
	}

	var v search.View
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatal(err)
	}
	if len(v.Visible) != 1 || v.Visible[0].Name != "hello-world" {
		t.Errorf("visible = %+v", v.Visible)
	}
	if len(v.Repositories) != 3 {
		t.Errorf("filters must not drop fetched repositories, got %d", len(v.Repositories))
	}
}

func TestSearchText(t *testing.T) {
	isolateEnv(t)
	stub := newGraphQLStub(t)

	out, err := execute(t, "search", "octocat", "--endpoint", stub.URL, "--token", "tok")
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	for _, want := range []string{"octocat", "hello-world", "1.5k", "No description provided", "Ruby"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSearchNotFound(t *testing.T) {
	isolateEnv(t)
	stub := newGraphQLStub(t)

	out, err := execute(t, "search", "ghost", "--endpoint", stub.URL, "--token", "tok")
	if !errors.Is(err, ErrReported) {
		t.Fatalf("error = %v, want ErrReported", err)
	}
	if !strings.Contains(out, `User "ghost" not found`) {
		t.Errorf("output = %q", out)
	}
}

func TestSearchEmptyUser(t *testing.T) {
	isolateEnv(t)
	stub := newGraphQLStub(t)

	out, err := execute(t, "search", "empty", "--endpoint", stub.URL, "--token", "tok")
	if err != nil {
		t.Fatalf("an empty result is not an error: %v", err)
	}
	if !strings.Contains(out, `User "empty" has no public repositories`) {
		t.Errorf("output = %q", out)
	}
}

func TestSearchBlankUsernameJSON(t *testing.T) {
	isolateEnv(t)
	stub := newGraphQLStub(t)

	_, err := execute(t, "search", "   ", "--json", "--endpoint", stub.URL, "--token", "tok")
	if err == nil || !strings.Contains(err.Error(), search.MsgEnterUsername) {
		t.Fatalf("error = %v", err)
	}
	if len(stub.paths) != 0 {
		t.Error("a blank username must not reach the network")
	}
}

func TestSearchManyUsers(t *testing.T) {
	isolateEnv(t)
	stub := newGraphQLStub(t)

	out, err := execute(t, "search", "octocat", "ghost", "empty", "--json", "--endpoint", stub.URL, "--token", "tok")
	if err == nil || !strings.Contains(err.Error(), "1 of 3 users") {
		t.Fatalf("error = %v", err)
	}

	var views []search.View
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(views) != 3 {
		t.Fatalf("got %d views", len(views))
	}
	if views[0].Username != "octocat" || views[1].Username != "ghost" || views[2].Username != "empty" {
		t.Errorf("views out of argument order: %s, %s, %s", views[0].Username, views[1].Username, views[2].Username)
	}
	if views[1].ErrorKind != search.KindNotFound {
		t.Errorf("ghost error kind = %q", views[1].ErrorKind)
	}
}

func TestSearchThroughProxy(t *testing.T) {
	isolateEnv(t)
	stub := newGraphQLStub(t)

	_, err := execute(t, "search", "octocat", "--json", "--proxy", stub.URL, "--token", "tok")
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if got := stub.lastAuth(); got != "" {
		t.Errorf("proxy requests must not carry a token, got %q", got)
	}
	if stub.paths[0] != "/api/github" {
		t.Errorf("path = %q, want the relay path", stub.paths[0])
	}
}

func TestSearchUsesSavedLogin(t *testing.T) {
	isolateEnv(t)
	stub := newGraphQLStub(t)

	sess := saveTestSession(t, "saved-token")
	if sess == nil {
		t.Fatal("session not saved")
	}

	if _, err := execute(t, "search", "octocat", "--json", "--endpoint", stub.URL); err != nil {
		t.Fatalf("search error: %v", err)
	}
	if got := stub.lastAuth(); got != "Bearer saved-token" {
		t.Errorf("Authorization = %q", got)
	}
}

func TestSearchRecordsHistory(t *testing.T) {
	isolateEnv(t)
	stub := newGraphQLStub(t)

	for _, name := range []string{"octocat", "ghost", "empty"} {
		execute(t, "search", name, "--json", "--endpoint", stub.URL, "--token", "tok")
	}

	out, err := execute(t, "history", "list", "--json")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	var entries []history.Entry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2 (failed searches are not recorded)", len(entries))
	}
	if entries[0].Username != "empty" || entries[1].Username != "octocat" || entries[1].RepoCount != 3 {
		t.Errorf("entries = %+v", entries)
	}

	if _, err := execute(t, "history", "clear"); err != nil {
		t.Fatalf("history clear: %v", err)
	}
	out, _ = execute(t, "history", "list", "--json")
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("history after clear = %q", out)
	}
}

func TestConfigFileFlag(t *testing.T) {
	isolateEnv(t)
	stub := newGraphQLStub(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	content := "endpoint = \"" + stub.URL + "\"\ntoken = \"file-token\"\n\n[history]\nbackend = \"none\"\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "search", "octocat", "--json", "--config", path); err != nil {
		t.Fatalf("search error: %v", err)
	}
	if got := stub.lastAuth(); got != "Bearer file-token" {
		t.Errorf("Authorization = %q", got)
	}
}

func TestInvalidConfig(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("page_size = 500\n"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := execute(t, "search", "octocat", "--config", path)
	if err == nil || !strings.Contains(err.Error(), "page_size") {
		t.Fatalf("error = %v", err)
	}
}

func TestCachePath(t *testing.T) {
	home := isolateEnv(t)

	out, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, ".cache", appName); strings.TrimSpace(out) != want {
		t.Errorf("cache path = %q, want %q", out, want)
	}
}
