// Package cache provides read-through memoization for upstream data.
// The cache is an explicit dependency injected into the API and catalog
// clients; invalidation is left to the caller.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/openclimate-tools/climateview/internal/model"
)

// Cache defines the interface for caching raw upstream payloads
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from the logical query, e.g.
// Key("pledges", actorID) or Key("dataset", name).
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "climateview:v1:" + hex.EncodeToString(hash[:])
}

// New builds a cache from configuration. A memory layer fronts the
// configured persistent backend; when caching is disabled a no-op cache
// is returned so callers need no nil checks.
func New(cfg model.CacheConfig) (Cache, error) {
	if !cfg.Enabled {
		return NopCache{}, nil
	}

	switch cfg.Backend {
	case "", "memory":
		return NewMemoryCache(cfg.MemoryTTL, 10*time.Minute), nil
	case "disk":
		disk := NewDiskCache(cfg.Dir, cfg.DiskTTL)
		return NewLayeredCache(NewMemoryCache(cfg.MemoryTTL, 10*time.Minute), disk), nil
	case "sqlite":
		db, err := NewSQLiteCache(cfg.Path, cfg.DiskTTL)
		if err != nil {
			return nil, fmt.Errorf("open sqlite cache: %w", err)
		}
		return NewLayeredCache(NewMemoryCache(cfg.MemoryTTL, 10*time.Minute), db), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// NopCache never stores anything; used when caching is disabled
type NopCache struct{}

func (NopCache) Get(string) ([]byte, bool)               { return nil, false }
func (NopCache) Set(string, []byte, time.Duration) error { return nil }
func (NopCache) Delete(string) error                     { return nil }
func (NopCache) Clear() error                            { return nil }
