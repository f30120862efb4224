// Package cache stores rendered diagrams and fetched sources between runs.
//
// # Backends
//
//   - [FileCache]: JSON entries under a local directory (CLI default)
//   - [RedisCache]: a shared Redis instance, for CI runners and the HTTP server
//   - [NullCache]: never stores anything (--no-cache)
//
// # Keys
//
// Keys are built by a [Keyer] so every backend sees the same layout.
// [DefaultKeyer] hashes the inputs that decide an entry's content: for a
// diagram that is the flow content, the diagram tool, the output format and
// which side of a comparison it shows. [ScopedKeyer] prefixes keys so that
// several tenants can share one Redis.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values for cache entries.
const (
	// DiagramTTL applies to rendered diagram text and artifacts. Entries are
	// content-addressed, so a long TTL only costs space.
	DiagramTTL = 30 * 24 * time.Hour

	// SourceTTL applies to file contents read from git revisions.
	SourceTTL = 7 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Side names the half of a comparison a diagram shows.
type Side string

const (
	SideOld Side = "old"
	SideNew Side = "new"
)

// DiagramKeyOpts are the rendering inputs that change a diagram's content.
type DiagramKeyOpts struct {
	Tool   string `json:"tool"`
	Format string `json:"format"`
	Side   Side   `json:"side"`
}

// Keyer builds cache keys.
type Keyer interface {
	// DiagramKey returns the key of a rendered diagram. contentHash covers
	// every input document the diagram was derived from.
	DiagramKey(contentHash string, opts DiagramKeyOpts) string

	// SourceKey returns the key of a file read at a git revision.
	SourceKey(repo, revision, path string) string
}

// DefaultKeyer is the standard key layout.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// DiagramKey implements [Keyer].
func (DefaultKeyer) DiagramKey(contentHash string, opts DiagramKeyOpts) string {
	return hashKey("diagram", contentHash, opts)
}

// SourceKey implements [Keyer].
func (DefaultKeyer) SourceKey(repo, revision, path string) string {
	return hashKey("source", repo, revision, path)
}

// ContentHash hashes one or more documents in order. A nil document is
// distinct from an empty one.
func ContentHash(docs ...[]byte) string {
	parts := make([]any, len(docs))
	for i, d := range docs {
		if d != nil {
			parts[i] = Hash(d)
		}
	}
	return hashKey("content", parts...)
}
