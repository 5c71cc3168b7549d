// Package cache holds a single value for a bounded time
package cache

import (
	"sync"
	"time"

	"github.com/mcoot/killergame/internal/dependencies/clock"
)

// Cache stores one value together with the time it was stored.
// Every Invalidate bumps a generation counter so that a read started before
// the invalidation cannot put stale data back.
type Cache[T any] struct {
	mu         sync.Mutex
	clock      clock.Clock
	value      T
	storedAt   time.Time
	valid      bool
	generation uint64
}

// New creates an empty cache
func New[T any](clk clock.Clock) *Cache[T] {
	return &Cache[T]{clock: clk}
}

// Get returns the cached value if it is younger than ttl.
// A ttl of zero or less never hits.
func (c *Cache[T]) Get(ttl time.Duration) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	if !c.valid || ttl <= 0 {
		return zero, false
	}
	if c.clock.Now().Sub(c.storedAt) >= ttl {
		return zero, false
	}
	return c.value, true
}

// Set stores a value unconditionally
func (c *Cache[T]) Set(value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store(value)
}

// Generation returns the current generation, to be passed to SetIfUnchanged
func (c *Cache[T]) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// SetIfUnchanged stores value only if no Invalidate happened since gen was read
func (c *Cache[T]) SetIfUnchanged(gen uint64, value T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return false
	}
	c.store(value)
	return true
}

// Invalidate drops the cached value
func (c *Cache[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	c.value = zero
	c.valid = false
	c.generation++
}

func (c *Cache[T]) store(value T) {
	c.value = value
	c.storedAt = c.clock.Now()
	c.valid = true
}
