// Package cache provides a TTL-bounded key/value store with single-flight
// get-or-compute semantics, shared safely across concurrent requests
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Option tweaks cache construction
type Option func(*settings)

type settings struct {
	now func() time.Time
}

// WithClock injects a clock, used by tests to control expiry
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

type item[V any] struct {
	val        V
	insertedAt time.Time
}

// Cache is a generic TTL cache. Entries are visible from insertion until
// insertedAt+ttl and then read as misses; expiry is fixed from insertion and
// is NOT refreshed by reads. There is no LRU eviction: key cardinality is
// bounded by the short TTL window, and stale slots are reused on recompute
type Cache[K comparable, V any] struct {
	ttl   time.Duration
	now   func() time.Time
	mu    sync.RWMutex
	items map[K]item[V]
	group singleflight.Group
}

// New builds a Cache with the given fixed TTL
func New[K comparable, V any](ttl time.Duration, opts ...Option) *Cache[K, V] {
	s := settings{now: time.Now}
	for _, o := range opts {
		o(&s)
	}
	return &Cache[K, V]{
		ttl:   ttl,
		now:   s.now,
		items: make(map[K]item[V]),
	}
}

// Get returns the live value for key, or ok=false on a miss or expired entry
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || c.now().Sub(it.insertedAt) >= c.ttl {
		var zero V
		return zero, false
	}
	return it.val, true
}

// GetOrCompute returns the cached value for key, or runs supply to produce it.
// Under concurrent misses for the same key at most one supply call is in
// flight; the other callers await and share its result. A caller whose ctx
// expires stops waiting, but the in-flight call is not interrupted, so late
// arrivals can still reuse its result
func (c *Cache[K, V]) GetOrCompute(ctx context.Context, key K, supply func(context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	ch := c.group.DoChan(fmt.Sprint(key), func() (any, error) {
		// a racer may have stored between our miss and this flight starting
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := supply(ctx)
		if err != nil {
			return v, err
		}
		c.mu.Lock()
		c.items[key] = item[V]{val: v, insertedAt: c.now()}
		c.mu.Unlock()
		return v, nil
	})

	select {
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			var zero V
			return zero, res.Err
		}
		return res.Val.(V), nil
	}
}

// Put stores a value directly, stamping it with the current clock
func (c *Cache[K, V]) Put(key K, val V) {
	c.mu.Lock()
	c.items[key] = item[V]{val: val, insertedAt: c.now()}
	c.mu.Unlock()
}

// Len counts live (unexpired) entries
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, it := range c.items {
		if c.now().Sub(it.insertedAt) < c.ttl {
			n++
		}
	}
	return n
}

// Clear drops every entry. Provided for test isolation and ops hooks
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	c.items = make(map[K]item[V])
	c.mu.Unlock()
}
