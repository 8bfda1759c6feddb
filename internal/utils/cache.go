package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CacheItem wraps a cached value with its expiry
type CacheItem[V any] struct {
	Data      V
	ExpiresAt time.Time
}

// Cache is a bounded LRU with per-entry TTL. Safe for concurrent use.
type Cache[K comparable, V any] struct {
	lruCache *lru.Cache[K, CacheItem[V]]
	ttl      time.Duration
	now      func() time.Time
}

// NewCache builds a cache holding at most size entries, each living for ttl.
func NewCache[K comparable, V any](size int, ttl time.Duration) (*Cache[K, V], error) {
	l, err := lru.New[K, CacheItem[V]](size)
	if err != nil {
		return nil, err
	}
	return &Cache[K, V]{lruCache: l, ttl: ttl, now: time.Now}, nil
}

// Set stores data under key for the cache TTL
func (c *Cache[K, V]) Set(key K, data V) {
	c.lruCache.Add(key, CacheItem[V]{
		Data:      data,
		ExpiresAt: c.now().Add(c.ttl),
	})
}

// Get returns the cached value, or false if absent or expired
func (c *Cache[K, V]) Get(key K) (V, bool) {
	val, ok := c.lruCache.Get(key)
	if !ok {
		var zero V
		return zero, false
	}

	if c.now().After(val.ExpiresAt) {
		c.lruCache.Remove(key)
		var zero V
		return zero, false
	}

	return val.Data, true
}

// Delete removes key
func (c *Cache[K, V]) Delete(key K) {
	c.lruCache.Remove(key)
}

// Len reports the number of entries, expired ones included
func (c *Cache[K, V]) Len() int {
	return c.lruCache.Len()
}
