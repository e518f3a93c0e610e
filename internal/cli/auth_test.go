package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/repoexplorer/pkg/integrations/github"
	"github.com/matzehuels/repoexplorer/pkg/session"
)

// saveTestSession stores a login in the (isolated) session directory.
func saveTestSession(t *testing.T, token string) *session.Session {
	t.Helper()
	sess, err := saveLogin(context.Background(),
		&github.OAuthToken{AccessToken: token},
		&github.User{ID: 1, Login: "octocat"},
	)
	if err != nil {
		t.Fatalf("save session: %v", err)
	}
	return sess
}

func TestLoginLifecycle(t *testing.T) {
	isolateEnv(t)
	ctx := context.Background()

	if _, err := loadLogin(ctx); err == nil || !strings.Contains(err.Error(), "not logged in") {
		t.Fatalf("load without login: err = %v", err)
	}
	if savedSession(ctx) != nil {
		t.Fatal("savedSession should be nil when logged out")
	}

	saveTestSession(t, "tok")
	sess := savedSession(ctx)
	if sess == nil || sess.AccessToken != "tok" || sess.Login() != "octocat" {
		t.Fatalf("saved session = %+v", sess)
	}

	if err := deleteLogin(ctx); err != nil {
		t.Fatal(err)
	}
	if savedSession(ctx) != nil {
		t.Fatal("session should be gone after logout")
	}
}

func TestLogoutCommand(t *testing.T) {
	isolateEnv(t)
	saveTestSession(t, "tok")

	out, err := execute(t, "github", "logout")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Logged out") {
		t.Errorf("output = %q", out)
	}
	if savedSession(context.Background()) != nil {
		t.Error("session should be removed")
	}
}

func TestOpenBrowserRejectsScheme(t *testing.T) {
	if err := openBrowser("file:///etc/passwd"); err == nil {
		t.Error("openBrowser should reject non-http schemes")
	}
}
