package registry

import (
	"sync"
)

// Collection is a concurrency-safe map that remembers insertion order.
// It backs any framework surface that hands out its members as an ordered
// list, most notably a module node's children.
type Collection[V any] struct {
	mu    sync.RWMutex
	items map[string]V
	order []string
}

// NewCollection returns an empty collection.
func NewCollection[V any]() *Collection[V] {
	return &Collection[V]{
		items: make(map[string]V),
	}
}

// Set stores value under key. Re-setting an existing key replaces the value
// silently and keeps the key's original position.
func (c *Collection[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists {
		c.order = append(c.order, key)
	}
	c.items[key] = value
}

// Get returns the value stored under key.
func (c *Collection[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	value, ok := c.items[key]
	return value, ok
}

// Delete removes key and its value. Deleting an absent key is a no-op.
func (c *Collection[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists {
		return
	}
	delete(c.items, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Len reports the number of stored values.
func (c *Collection[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// Keys returns the stored keys in insertion order.
func (c *Collection[V]) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, len(c.order))
	copy(keys, c.order)
	return keys
}

// Values returns the stored values in insertion order.
func (c *Collection[V]) Values() []V {
	c.mu.RLock()
	defer c.mu.RUnlock()

	values := make([]V, 0, len(c.order))
	for _, key := range c.order {
		values = append(values, c.items[key])
	}
	return values
}
