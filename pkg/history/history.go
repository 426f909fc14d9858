// Package history records completed profiling runs.
//
// Each run appends a Record (method, target, durations, artifact paths) to
// a Store. The file backend keeps a local JSON-lines log for single-user
// CLI use; the mongo backend is for shared setups where a team wants one
// queryable log of profiling activity.
package history

import (
	"context"
	"time"
)

// Record describes one completed profiling run.
type Record struct {
	ID        string        `json:"id" bson:"_id"`
	Method    string        `json:"method" bson:"method"`
	Target    string        `json:"target" bson:"target"`
	StartedAt time.Time     `json:"started_at" bson:"started_at"`
	Duration  time.Duration `json:"duration" bson:"duration"`
	Artifacts []string      `json:"artifacts" bson:"artifacts"`
	CacheHit  bool          `json:"cache_hit" bson:"cache_hit"`
}

// Store persists run records.
type Store interface {
	// Append adds a record.
	Append(ctx context.Context, rec Record) error

	// List returns records, newest first, up to limit. A limit of 0
	// returns everything.
	List(ctx context.Context, limit int) ([]Record, error)

	// Clear removes all records.
	Clear(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
