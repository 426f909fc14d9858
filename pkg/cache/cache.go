// Package cache stores rendered call-graph artifacts keyed on the workload
// that produced them.
//
// Profiler stats are never cached: re-running the profiler is the point of
// invoking mixprof again. What is cached is the deterministic tail of the
// pipeline, the DOT conversion and image rendering for a given script hash,
// method, and option set.
//
// Backends:
//   - FileCache: default for CLI usage, entries under ~/.cache/mixprof
//   - RedisCache: shared cache for CI runners or teams
//   - NullCache: caching disabled (--no-cache)
package cache

import (
	"context"
	"time"
)

// TTLArtifact is how long rendered artifacts stay valid. Rendering is
// deterministic for a given input, so the TTL mainly bounds disk usage.
const TTLArtifact = 7 * 24 * time.Hour

// Cache is the storage interface shared by all backends.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was found
	// and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// ArtifactKeyOpts captures everything that changes the bytes of a rendered
// artifact for the same workload.
type ArtifactKeyOpts struct {
	Method        string
	Format        string
	NodeThreshold float64
	EdgeThreshold float64
	Interactive   bool
}

// ArtifactKey generates a cache key for a rendered artifact. scriptHash is
// the sha256 of the profiled script's contents, so edits invalidate
// naturally.
func ArtifactKey(scriptHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", scriptHash, opts)
}
