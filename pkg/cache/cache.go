// Package cache stores generated design batches and rendered certificate
// artifacts behind a small key/value interface.
//
// Three backends are provided:
//
//   - [FileCache]: JSON entry files under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//   - [NullCache]: stores nothing, for tests and --no-cache
//
// Keys are built by a [Keyer] so that the same inputs map to the same
// entry regardless of which process computed them.
package cache

import (
	"context"
	"time"
)

// Default lifetimes of cached entries.
const (
	// TTLBatch bounds how long a generated batch is reused for the same
	// category and background image.
	TTLBatch = 24 * time.Hour

	// TTLLayout bounds cached draw-op lists.
	TTLLayout = 7 * 24 * time.Hour

	// TTLArtifact bounds cached PNG/SVG/JSON renders.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
//
// Get reports a miss with ok=false and a nil error. Implementations must be
// safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
