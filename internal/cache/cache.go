package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/singleflight"
)

// Package cache provides TTL-bounded loaders for upstream responses.
// Concurrent misses for the same key are coalesced so at most one upstream
// fetch is in flight per key.

// Loader caches values of type T by string key with a fixed TTL.
type Loader[T any] struct {
	cache *ttlcache.Cache[string, T]
	group singleflight.Group
}

// NewLoader creates a loader. Hits do not extend the TTL, matching the
// fixed-expiry semantics the portal relies on for freshness.
func NewLoader[T any](ttl time.Duration, capacity uint64) *Loader[T] {
	c := ttlcache.New[string, T](
		ttlcache.WithTTL[string, T](ttl),
		ttlcache.WithCapacity[string, T](capacity),
		ttlcache.WithDisableTouchOnHit[string, T](),
	)
	go c.Start()
	return &Loader[T]{cache: c}
}

// Get returns the cached value for key, fetching and storing it on a miss.
// Errors are not cached; the next Get retries the fetch.
func (l *Loader[T]) Get(ctx context.Context, key string, fetch func(ctx context.Context) (T, error)) (T, error) {
	if item := l.cache.Get(key); item != nil {
		return item.Value(), nil
	}

	v, err, _ := l.group.Do(key, func() (any, error) {
		// Another caller may have populated the key while we waited.
		if item := l.cache.Get(key); item != nil {
			return item.Value(), nil
		}
		val, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		l.cache.Set(key, val, ttlcache.DefaultTTL)
		return val, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Set stores a value directly, bypassing the fetch path.
func (l *Loader[T]) Set(key string, value T) {
	l.cache.Set(key, value, ttlcache.DefaultTTL)
}

// Invalidate drops a single key.
func (l *Loader[T]) Invalidate(key string) {
	l.cache.Delete(key)
}

// Purge drops all keys.
func (l *Loader[T]) Purge() {
	l.cache.DeleteAll()
}

// Stop terminates the background expiry loop.
func (l *Loader[T]) Stop() {
	l.cache.Stop()
}
