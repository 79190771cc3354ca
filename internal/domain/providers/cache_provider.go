package providers

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by CacheProvider.Get for a missing key
var ErrCacheMiss = errors.New("cache miss")

// CacheProvider defines the interface for response caching. The availability
// core never reads or writes it; it serves directory-only routes.
type CacheProvider interface {
	// Get retrieves a value; a missing key returns ErrCacheMiss
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with a time to live
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	// Exists checks if a key exists in cache
	Exists(ctx context.Context, key string) (bool, error)
}
