package cache

import (
	"sync"
)

// Tracked is an insertion-ordered set of discovered entities keyed by remote identity.
// Inserting an identity that is already present is a no-op.
type Tracked[T any] struct {
	mu    sync.Mutex
	keyOf func(T) string
	items map[string]T
	order []string
}

// NewTracked creates an empty set using keyOf to identify entries.
func NewTracked[T any](keyOf func(T) string) *Tracked[T] {
	return &Tracked[T]{
		keyOf: keyOf,
		items: make(map[string]T),
	}
}

// Merge inserts every entry whose identity is absent and returns how many were added.
func (c *Tracked[T]) Merge(entries ...T) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	added := 0
	for _, e := range entries {
		key := c.keyOf(e)
		if _, ok := c.items[key]; ok {
			continue
		}
		c.items[key] = e
		c.order = append(c.order, key)
		added++
	}
	return added
}

// Get returns the entry with the given identity.
func (c *Tracked[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.items[key]
	return e, ok
}

// Contains reports whether the identity is tracked.
func (c *Tracked[T]) Contains(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Remove evicts an entry. It reports whether the identity was present.
func (c *Tracked[T]) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[key]; !ok {
		return false
	}
	delete(c.items, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// All returns a snapshot of the entries in insertion order.
func (c *Tracked[T]) All() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.items[k])
	}
	return out
}

// Len returns the number of tracked entries.
func (c *Tracked[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

// Reset clears the set.
func (c *Tracked[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]T)
	c.order = nil
}

// SafeCounter is a thread-safe counter
type SafeCounter struct {
	mu sync.Mutex
	v  int
}

func (c *SafeCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *SafeCounter) Set(v int) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

func (c *SafeCounter) Inc() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.v++
	return c.v
}
