// Package cache provides byte-oriented caches for relayed API responses.
//
// # Overview
//
// All backends implement [Cache]:
//
//   - [NullCache]: stores nothing (the default)
//   - [MemoryCache]: in-process LRU with per-entry expiry
//   - [FileCache]: JSON files under a directory, for a single relay host
//   - [RedisCache]: shared across relay replicas
//
// [Instrument] wraps any backend so hits, misses, and writes are reported to
// the observability cache hooks.
//
// The search client itself never caches. Only the relay server puts a cache
// in front of GitHub.
//
// # Keys
//
// A [Keyer] derives cache keys from request content. [NewScopedKeyer] adds a
// namespace prefix so several deployments can share one Redis.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional per-entry expiry.
type Cache interface {
	// Get returns the data for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}
