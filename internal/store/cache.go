package store

import (
	"sync"
	"time"
)

// Cache is a concurrency-safe single-slot TTL cache. It holds the most
// recent value only; a new Set replaces the previous value atomically.
// Races between concurrent misses are tolerated, last write wins.
type Cache[T any] struct {
	mu  sync.RWMutex
	ttl time.Duration

	value    T
	storedAt time.Time
	present  bool
}

// NewCache creates a single-slot cache. A ttl <= 0 means every Get is a miss.
func NewCache[T any](ttl time.Duration) *Cache[T] {
	return &Cache[T]{ttl: ttl}
}

// Get returns the cached value and true when the slot is filled and younger
// than the TTL.
func (c *Cache[T]) Get() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.present || c.ttl <= 0 || time.Since(c.storedAt) >= c.ttl {
		var zero T
		return zero, false
	}
	return c.value, true
}

// Set stores a value with the current timestamp.
func (c *Cache[T]) Set(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.value = v
	c.storedAt = time.Now()
	c.present = true
}

// Invalidate empties the slot so the next Get is a miss.
func (c *Cache[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	c.value = zero
	c.present = false
}

type keyedEntry[T any] struct {
	value    T
	storedAt time.Time
}

// KeyedCache is a concurrency-safe map of independently-expiring TTL entries.
type KeyedCache[T any] struct {
	mu   sync.RWMutex
	ttl  time.Duration
	data map[string]keyedEntry[T]
}

// NewKeyedCache creates an empty keyed cache with a shared TTL.
func NewKeyedCache[T any](ttl time.Duration) *KeyedCache[T] {
	return &KeyedCache[T]{
		ttl:  ttl,
		data: make(map[string]keyedEntry[T]),
	}
}

// Get returns the value for key and true when present and fresh.
func (c *KeyedCache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.data[key]
	if !ok || c.ttl <= 0 || time.Since(e.storedAt) >= c.ttl {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Set stores a value for key, dropping any expired entries while it holds
// the lock so abandoned keys do not accumulate.
func (c *KeyedCache[T]) Set(key string, v T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, e := range c.data {
		if time.Since(e.storedAt) >= c.ttl {
			delete(c.data, k)
		}
	}
	c.data[key] = keyedEntry[T]{value: v, storedAt: time.Now()}
}
