package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/waitgraph/pkg/deadlock"
	"github.com/matzehuels/waitgraph/pkg/errors"
	"github.com/matzehuels/waitgraph/pkg/store"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "waitgraph.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig(\"\") error: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", cfg.Addr)
	}
	if cfg.Cache.Backend != "file" || cfg.Store.Backend != "memory" {
		t.Errorf("backends = %s/%s, want file/memory", cfg.Cache.Backend, cfg.Store.Backend)
	}
	if cfg.Store.MaxRecords != store.DefaultMaxRecords {
		t.Errorf("Store.MaxRecords = %d, want %d", cfg.Store.MaxRecords, store.DefaultMaxRecords)
	}
}

func TestMemoryStoreLimitFromConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "[store]\nmax_records = 1\n[cache]\nbackend = \"none\""))
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	st, err := newStore(context.Background(), cfg.Store)
	if err != nil {
		t.Fatalf("newStore() error: %v", err)
	}
	ms, ok := st.(*store.MemoryStore)
	if !ok {
		t.Fatalf("newStore() = %T, want *store.MemoryStore", st)
	}
	ctx := context.Background()
	for _, h := range []string{"a", "b"} {
		if err := ms.Put(ctx, store.NewRecord(h, &deadlock.Report{}, time.Now())); err != nil {
			t.Fatal(err)
		}
	}
	if ms.Len() != 1 {
		t.Errorf("Len() = %d after two puts with max_records = 1, want 1", ms.Len())
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
addr = "127.0.0.1:9090"
read_timeout = "5s"

[cache]
backend = "redis"
redis_addr = "localhost:6379"
prefix = "team:"
ttl = "1h"

[store]
backend = "mongo"
mongo_uri = "mongodb://localhost:27017"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Addr != "127.0.0.1:9090" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", cfg.ReadTimeout)
	}
	if cfg.Cache.TTL != time.Hour || cfg.Cache.Prefix != "team:" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Store.Database != "waitgraph" || cfg.Store.Collection != "analyses" {
		t.Errorf("Store defaults not kept: %+v", cfg.Store)
	}
	if cfg.WriteTimeout != 30*time.Second {
		t.Errorf("WriteTimeout default lost: %v", cfg.WriteTimeout)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{"syntax", `addr = `, errors.ErrCodeInvalidConfig},
		{"unknown key", `port = 80`, errors.ErrCodeInvalidConfig},
		{"bad backend", "[cache]\nbackend = \"memcached\"", errors.ErrCodeInvalidConfig},
		{"redis without addr", "[cache]\nbackend = \"redis\"", errors.ErrCodeInvalidConfig},
		{"mongo without uri", "[store]\nbackend = \"mongo\"", errors.ErrCodeInvalidConfig},
		{"empty addr", `addr = ""`, errors.ErrCodeInvalidConfig},
		{"negative max records", "[store]\nmax_records = -1", errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			if !errors.Is(err, tt.code) {
				t.Errorf("LoadConfig() error = %v, want %s", err, tt.code)
			}
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("LoadConfig(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}
