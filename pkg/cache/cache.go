// Package cache stores generated layouts and brick groupings.
//
// Layout generation is a pure function of catalog, viewport, strategy and
// seed, so a finished layout can be served again without recomputing it.
// The pipeline runner and the HTTP server both go through the [Cache]
// interface; which backend sits behind it is a configuration decision:
//
//   - [NullCache] disables caching
//   - [FileCache] persists entries under a directory (CLI default)
//   - [MemoryCache] keeps a bounded LRU in process (server default)
//   - [RedisCache] shares entries between server instances
//
// Keys are built by a [Keyer] so that every input that changes the output
// is part of the key.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values per entry kind.
const (
	TTLLayout = 7 * 24 * time.Hour
	TTLBricks = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// Implementations are safe for concurrent use.
type Cache interface {
	// Get returns the stored value and whether it was found. A missing or
	// expired entry is a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl ≤ 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// NullCache never stores anything.
type NullCache struct{}

// NewNullCache returns a cache that always misses.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

var _ Cache = NullCache{}
