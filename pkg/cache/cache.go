// Package cache stores rasterized unit images between runs.
//
// Rasterization is the expensive step of a run, and its output depends only
// on the SVG bytes, the target size and the backend. Keys are derived from
// exactly those inputs (see [Keyer]), so a cached PNG is valid for as long as
// the entry lives, and a changed layout simply misses.
//
// Three backends are provided:
//
//   - [FileCache]: one file per entry under the user cache directory (CLI default)
//   - [RedisCache]: a shared Redis instance (useful for `qrsheet serve`)
//   - [NullCache]: caching disabled
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with expiration.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is reported
	// as hit == false with a nil error.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}
