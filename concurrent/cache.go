// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package concurrent provides synchronized data structures.
package concurrent

import "sync"

// Cache is a map which is safe for concurrent use. Entries are never evicted.
type Cache[K comparable, V any] struct {
	mu   sync.RWMutex
	data map[K]V
}

// NewCache returns an empty [Cache].
func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		data: make(map[K]V),
	}
}

// Get returns the value cached for k, if any.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.data[k]
	return v, ok
}

// GetOr returns the value cached for k or computes, caches and returns it
// with f. f runs at most once per key unless it fails, in which case
// nothing is cached.
func (c *Cache[K, V]) GetOr(k K, f func() (V, error)) (V, error) {
	if v, ok := c.Get(k); ok {
		return v, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.data[k]; ok {
		return v, nil
	}

	v, err := f()
	if err != nil {
		return v, err
	}
	c.data[k] = v
	return v, nil
}

// Len reports the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.data)
}
