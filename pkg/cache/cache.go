// Package cache provides response caching for registry metadata lookups.
//
// Three backends implement the [Cache] interface:
//   - [FileCache]: directory-backed cache for CLI usage
//   - [RedisCache]: shared cache for server deployments
//   - [NullCache]: no-op cache for tests and --no-cache runs
//
// Keys are opaque strings; callers namespace them per source
// (e.g., "npm:express"). Values are raw bytes, typically JSON.
package cache

import (
	"context"
	"time"
)

// Cache is the storage interface for cached registry responses.
type Cache interface {
	// Get retrieves a value. The boolean reports whether the key was
	// found and fresh; expired or missing entries are a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A TTL of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}
