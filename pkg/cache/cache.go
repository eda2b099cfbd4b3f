// Package cache provides pluggable caching backends for upstream registry
// responses.
//
// The [Cache] interface is deliberately small (Get/Set/Delete over byte
// slices) so backends can be swapped without touching callers:
//   - file: directory of hashed entries with TTL metadata, for CLI usage
//   - null: no-op cache for tests and --no-cache runs
//   - redis: shared cache for long-running serve deployments
//   - mongo: document-store cache with a TTL index
//
// Keys are arbitrary strings; callers namespace them per upstream API
// (e.g., "npm:express", "nuget:newtonsoft.json"). Use [Hash] or [hashKey]
// style helpers when keys may contain unsafe characters.
package cache

import (
	"context"
	"time"
)

// Cache stores byte payloads under string keys with per-entry TTL.
//
// Implementations must be safe for concurrent use. A TTL of 0 means the
// entry never expires.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was found and fresh; expired or missing entries return (nil,
	// false, nil), not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources (connections, file handles).
	Close() error
}
