package cache

import (
	"context"
	"time"
)

// NullCache discards every write and misses every read. It stands in
// wherever a Cache is required but caching is switched off.
type NullCache struct{}

// NewNullCache returns the no-op cache.
func NewNullCache() Cache {
	return NullCache{}
}

// Get is always a miss.
func (NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set discards the value.
func (NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete is a no-op.
func (NullCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Close is a no-op.
func (NullCache) Close() error {
	return nil
}

var _ Cache = NullCache{}
