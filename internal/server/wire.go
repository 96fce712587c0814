package server

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/waitgraph/pkg/cache"
	"github.com/matzehuels/waitgraph/pkg/pipeline"
	"github.com/matzehuels/waitgraph/pkg/store"
)

// Build creates the cache, store and runner described by cfg and returns a
// Server using them. The returned close function releases the backends.
func Build(ctx context.Context, cfg Config, logger *log.Logger, opts ...Option) (*Server, func(), error) {
	c, err := newCache(ctx, cfg.Cache)
	if err != nil {
		return nil, nil, err
	}
	st, err := newStore(ctx, cfg.Store)
	if err != nil {
		_ = c.Close()
		return nil, nil, err
	}

	var keyer cache.Keyer = cache.NewDefaultKeyer()
	if cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(keyer, cfg.Cache.Prefix)
	}
	runner := pipeline.NewRunner(c, keyer, logger)

	opts = append([]Option{WithMaxBodyBytes(cfg.MaxBodyBytes)}, opts...)
	srv := New(runner, st, logger, opts...)

	closeFn := func() {
		if err := runner.Close(); err != nil {
			logger.Warn("close cache", "error", err)
		}
		if err := st.Close(context.Background()); err != nil {
			logger.Warn("close store", "error", err)
		}
	}
	return srv, closeFn, nil
}

func newCache(ctx context.Context, cfg CacheConfig) (cache.Cache, error) {
	var (
		c   cache.Cache
		err error
	)
	switch cfg.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		c, err = cache.NewRedisCache(ctx, cfg.RedisAddr)
	default:
		c, err = cache.NewFileCache(cfg.Dir)
	}
	if err != nil {
		return nil, fmt.Errorf("cache %s: %w", cfg.Backend, err)
	}
	return cache.WithTTL(c, cfg.TTL), nil
}

func newStore(ctx context.Context, cfg StoreConfig) (store.Store, error) {
	if cfg.Backend != "mongo" {
		return store.NewMemoryStore(cfg.MaxRecords), nil
	}
	st, err := store.NewMongoStore(ctx, store.MongoConfig{
		URI:        cfg.MongoURI,
		Database:   cfg.Database,
		Collection: cfg.Collection,
	})
	if err != nil {
		return nil, fmt.Errorf("store mongo: %w", err)
	}
	return st, nil
}
