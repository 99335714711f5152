package store

import (
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache provides bounded in-memory caching keyed by record id.
type Cache[V any] interface {
	Get(key string) (V, bool)
	Add(key string, value V)
	Keys() []string
	Len() int
}

// LRUCache keeps the most recently used records.
// Get and Add move an entry to the most-recent end; once the cache holds
// more than maxSize entries the least-recent one is evicted.
// Entries are never invalidated when the backing file changes.
type LRUCache[V any] struct {
	lru *lru.Cache[string, V]
}

// NewLRUCache creates a cache holding at most maxSize entries.
// onEvict, if non-nil, is called with the key of every evicted entry.
func NewLRUCache[V any](maxSize int, onEvict func(key string)) (*LRUCache[V], error) {
	var cb func(string, V)
	if onEvict != nil {
		cb = func(key string, _ V) { onEvict(key) }
	}

	c, err := lru.NewWithEvict[string, V](maxSize, cb)
	if err != nil {
		return nil, err
	}
	return &LRUCache[V]{lru: c}, nil
}

// Get retrieves a value and marks it most recently used.
func (c *LRUCache[V]) Get(key string) (V, bool) {
	return c.lru.Get(key)
}

// Add stores a value at the most-recent position, evicting if full.
func (c *LRUCache[V]) Add(key string, value V) {
	c.lru.Add(key, value)
}

// Keys returns cached keys, most recently used first.
func (c *LRUCache[V]) Keys() []string {
	keys := c.lru.Keys()
	slices.Reverse(keys)
	return keys
}

// Len returns the number of cached entries.
func (c *LRUCache[V]) Len() int {
	return c.lru.Len()
}

var _ Cache[[]byte] = (*LRUCache[[]byte])(nil)
