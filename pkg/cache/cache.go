// Package cache stores provider responses so that repeated searches and
// pivots back to an earlier query do not hit the photo API again.
//
// All backends implement [Cache] and store opaque bytes with a TTL:
//   - [NullCache]: caching disabled
//   - [MemoryCache]: bounded in-process LRU (server default)
//   - [FileCache]: one JSON file per entry under the user cache dir (CLI default)
//   - [RedisCache]: shared cache for multi-instance deployments
//   - [MongoCache]: document-store cache with a TTL index
//
// Use [Open] to construct the backend named in configuration.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored bytes and true on a hit. Expired entries are
	// reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Options selects and configures a backend for Open.
type Options struct {
	Backend    string
	Dir        string // file
	MemorySize int    // memory
	Redis      RedisConfig
	Mongo      MongoConfig
}

// Open constructs the backend named by opts.Backend. An empty backend name
// selects the file cache.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case BackendNone:
		return NewNullCache(), nil
	case BackendMemory:
		c, err := NewMemoryCache(opts.MemorySize)
		if err != nil {
			return nil, fmt.Errorf("open memory cache: %w", err)
		}
		return c, nil
	case "", BackendFile:
		c, err := NewFileCache(opts.Dir)
		if err != nil {
			return nil, fmt.Errorf("open file cache: %w", err)
		}
		return c, nil
	case BackendRedis:
		c, err := NewRedisCache(ctx, opts.Redis)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendMongo:
		c, err := NewMongoCache(ctx, opts.Mongo)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}
