package cache

import (
	"context"
	"time"
)

// NullCache stores nothing. It backs `waitgraph --no-cache` and the server's
// "none" cache backend, so every analysis and render is recomputed.
//
// Like the real backends it reports a cancelled context as an error.
type NullCache struct{}

// NewNullCache returns a NullCache.
func NewNullCache() Cache { return NullCache{} }

// Get reports a miss.
func (NullCache) Get(ctx context.Context, _ string) ([]byte, bool, error) {
	return nil, false, ctx.Err()
}

// Set discards data.
func (NullCache) Set(ctx context.Context, _ string, _ []byte, _ time.Duration) error {
	return ctx.Err()
}

// Delete is a no-op.
func (NullCache) Delete(ctx context.Context, _ string) error { return ctx.Err() }

// Close is a no-op.
func (NullCache) Close() error { return nil }

var _ Cache = NullCache{}
