// Package cache provides a small byte cache for rendered diagram
// artifacts. Rendering a snapshot through Graphviz is the most expensive
// operation in the serve path, and snapshots are immutable once stored,
// so rendered SVGs are cached keyed by a hash of the snapshot content
// and the render options.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Cache stores rendered artifacts keyed by content hash.
type Cache interface {
	// Get retrieves a cached artifact. The second return value reports
	// whether the key was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores an artifact. A ttl of zero means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes an artifact. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// Key derives a cache key from the given components. Components are
// JSON-encoded so that option structs and raw bytes hash consistently.
func Key(parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
