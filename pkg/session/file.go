package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const fileExt = ".json"

// FileStore keeps one JSON file per session in a directory.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore opens a store in dir, creating it with owner-only
// permissions. An empty dir means [DefaultDir].
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory holding the session files.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+fileExt)
}

func (s *FileStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	sess, err := readSession(s.path(id))
	s.mu.RUnlock()
	if err != nil || sess == nil {
		return nil, err
	}
	if sess.IsExpired() {
		return nil, s.remove(id)
	}
	return sess, nil
}

func (s *FileStore) Set(_ context.Context, sess *Session) error {
	if sess.ID == "" {
		return fmt.Errorf("session has no id")
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dst := s.path(sess.ID)
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	return s.remove(id)
}

func (s *FileStore) remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// Cleanup removes expired sessions. Unreadable files are left alone.
func (s *FileStore) Cleanup(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read session dir: %w", err)
	}

	now := time.Now()
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		p := filepath.Join(s.dir, e.Name())
		sess, err := readSession(p)
		if err != nil || sess == nil || !now.After(sess.ExpiresAt) {
			continue
		}
		if os.Remove(p) == nil {
			removed++
		}
	}
	return removed, nil
}

// readSession returns nil, nil when the file does not exist.
func readSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	return &sess, nil
}

var _ Store = (*FileStore)(nil)

// LoginID is the session ID of the CLI login.
const LoginID = "github"

// LoginStore holds the single GitHub login the CLI uses when no other token
// is configured.
type LoginStore struct {
	store *FileStore
	ttl   time.Duration
}

// NewLoginStore opens the login store in dir ([DefaultDir] when empty).
// Logins are valid for [DefaultTTL].
func NewLoginStore(dir string) (*LoginStore, error) {
	store, err := NewFileStore(dir)
	if err != nil {
		return nil, err
	}
	return &LoginStore{store: store, ttl: DefaultTTL}, nil
}

// Load returns the current login, or nil, nil when logged out.
func (l *LoginStore) Load(ctx context.Context) (*Session, error) {
	return l.store.Get(ctx, LoginID)
}

// Save replaces the current login with sess.
func (l *LoginStore) Save(ctx context.Context, sess *Session) error {
	sess.ID = LoginID
	return l.store.Set(ctx, sess)
}

// Delete logs out. Deleting without a login is not an error.
func (l *LoginStore) Delete(ctx context.Context) error {
	return l.store.Delete(ctx, LoginID)
}

// TTL returns how long new logins stay valid.
func (l *LoginStore) TTL() time.Duration { return l.ttl }

// Path returns the login file path.
func (l *LoginStore) Path() string {
	return l.store.path(LoginID)
}
