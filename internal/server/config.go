package server

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/waitgraph/pkg/errors"
	"github.com/matzehuels/waitgraph/pkg/store"
)

// Config is the server configuration, usually read from waitgraph.toml.
//
//	addr = ":8080"
//	read_timeout = "10s"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "24h"
//
//	[store]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
type Config struct {
	Addr         string        `toml:"addr" validate:"required"`
	ReadTimeout  time.Duration `toml:"read_timeout" validate:"gte=0"`
	WriteTimeout time.Duration `toml:"write_timeout" validate:"gte=0"`
	MaxBodyBytes int64         `toml:"max_body_bytes" validate:"gt=0"`

	Cache CacheConfig `toml:"cache"`
	Store StoreConfig `toml:"store"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend   string        `toml:"backend" validate:"oneof=file redis none"`
	Dir       string        `toml:"dir" validate:"required_if=Backend file"`
	RedisAddr string        `toml:"redis_addr" validate:"required_if=Backend redis"`
	Prefix    string        `toml:"prefix"`
	TTL       time.Duration `toml:"ttl" validate:"gte=0"`
}

// StoreConfig selects the record store backend.
type StoreConfig struct {
	Backend    string `toml:"backend" validate:"oneof=memory mongo"`
	MongoURI   string `toml:"mongo_uri" validate:"required_if=Backend mongo"`
	Database   string `toml:"database" validate:"required_if=Backend mongo"`
	Collection string `toml:"collection" validate:"required_if=Backend mongo"`
	// MaxRecords caps the memory backend; the oldest record is evicted first.
	MaxRecords int    `toml:"max_records" validate:"gte=0"`
}

var configValidate = validator.New()

// DefaultConfig returns the configuration used when no file is given:
// an in-memory store and a file cache under the user cache directory.
func DefaultConfig() Config {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return Config{
		Addr:         ":8080",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		MaxBodyBytes: 4 << 20,
		Cache: CacheConfig{
			Backend: "file",
			Dir:     filepath.Join(dir, "waitgraph", "server"),
		},
		Store: StoreConfig{
			Backend:    "memory",
			Database:   "waitgraph",
			Collection: "analyses",
			MaxRecords: store.DefaultMaxRecords,
		},
	}
}

// LoadConfig reads path over the defaults and validates the result.
// An empty path yields the validated defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		if err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q in %s", undecoded[0].String(), path)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid config")
	}
	return nil
}

func (c Config) String() string {
	return fmt.Sprintf("addr=%s cache=%s store=%s", c.Addr, c.Cache.Backend, c.Store.Backend)
}
