// Package cache stores analysis results and rendered artifacts by content hash.
//
// Reports and rendered artifacts are keyed by the hash of the canonical graph
// JSON, artifacts additionally by their render options. The analysis is
// deterministic, so a cached value stays valid for its key; TTLs only bound
// disk and memory usage.
//
// Three backends are provided:
//
//   - [FileCache]: one JSON file per entry under a directory, for the CLI.
//   - [RedisCache]: a shared Redis instance, for the HTTP server.
//   - [NullCache]: never stores anything, for --no-cache and tests.
package cache

import (
	"context"
	"time"
)

// Default TTLs per entry type.
const (
	ReportTTL   = 7 * 24 * time.Hour
	ArtifactTTL = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with optional expiry.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. A ttl of zero means the entry does not expire.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
