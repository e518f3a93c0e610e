// Package history records which usernames were searched and when.
//
// Two backends are provided: [FileStore] keeps a small JSON file next to the
// CLI config, and [MongoStore] keeps one document per username in a MongoDB
// collection so several machines can share a history.
//
// Entries are keyed case-insensitively by username. Adding a name that is
// already present moves it to the front and refreshes its count.
package history

import (
	"context"
	"strings"
	"time"
)

// DefaultLimit is the number of entries kept when none is configured.
const DefaultLimit = 20

// Entry is one recorded search.
type Entry struct {
	Username   string    `json:"username" bson:"username"`
	SearchedAt time.Time `json:"searched_at" bson:"searched_at"`
	RepoCount  int       `json:"repo_count" bson:"repo_count"`
}

// Store is implemented by history backends.
type Store interface {
	// Add records e, replacing any entry for the same username.
	Add(ctx context.Context, e Entry) error

	// List returns up to limit entries, newest first. A limit <= 0 returns
	// every entry.
	List(ctx context.Context, limit int) ([]Entry, error)

	// Clear removes all entries.
	Clear(ctx context.Context) error

	Close() error
}

func key(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Nop is a Store that records nothing.
type Nop struct{}

func (Nop) Add(context.Context, Entry) error           { return nil }
func (Nop) List(context.Context, int) ([]Entry, error) { return []Entry{}, nil }
func (Nop) Clear(context.Context) error                { return nil }
func (Nop) Close() error                               { return nil }

var _ Store = Nop{}
