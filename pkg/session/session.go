// Package session persists the GitHub login used by the CLI.
//
// A [Session] holds the access token obtained through the device flow along
// with the user it belongs to. Sessions expire after their TTL; expired
// sessions are treated as absent and removed on read.
//
// Sessions are stored as JSON files, one per session ID, under
// $XDG_CONFIG_HOME/repoexplorer/sessions/. The CLI keeps a single login,
// which [LoginStore] wraps:
//
//	logins, err := session.NewLoginStore("")
//	sess, err := logins.Save(ctx, token, user)
//
//	sess, err = logins.Load(ctx) // nil when logged out or expired
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/repoexplorer/pkg/integrations/github"
)

// DefaultTTL is how long a CLI login stays valid.
const DefaultTTL = 30 * 24 * time.Hour

// Session is a stored GitHub login.
type Session struct {
	ID          string       `json:"id"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type,omitempty"`
	Scope       string       `json:"scope,omitempty"`
	User        *github.User `json:"user"`
	ExpiresAt   time.Time    `json:"expires_at"`
	CreatedAt   time.Time    `json:"created_at"`
}

// IsExpired reports whether the session is past its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Remaining returns the time left before expiry, never negative.
func (s *Session) Remaining() time.Duration {
	return max(time.Until(s.ExpiresAt), 0)
}

// Login returns the GitHub login of the session user, or "".
func (s *Session) Login() string {
	if s == nil || s.User == nil {
		return ""
	}
	return s.User.Login
}

// Store is implemented by session backends.
type Store interface {
	// Get returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)
	Set(ctx context.Context, session *Session) error
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions and returns how many it removed.
	Cleanup(ctx context.Context) (int, error)
}

// DefaultDir returns the directory sessions are stored in by default.
func DefaultDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	return filepath.Join(dir, "repoexplorer", "sessions"), nil
}

// GenerateID creates a random session ID.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// New creates a session for an OAuth token issued to user.
func New(tok *github.OAuthToken, user *github.User, ttl time.Duration) (*Session, error) {
	if tok == nil || tok.AccessToken == "" {
		return nil, fmt.Errorf("empty access token")
	}
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Session{
		ID:          id,
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		Scope:       tok.Scope,
		User:        user,
		ExpiresAt:   now.Add(ttl),
		CreatedAt:   now,
	}, nil
}
