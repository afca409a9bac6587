// Package flight provides a populate-once cache with per-key single-flight
// loading.
package flight

import (
	"context"
	"sync"
)

// Cache memoizes one value per key for the life of the Cache.
//
// The first Get for a key starts a load; concurrent Gets for the same key
// wait on that load instead of starting their own. A successful result is
// kept and every later Get returns it. A failed load is handed to the callers
// waiting on it and then forgotten, so the next Get starts a new load.
//
// The load runs under its own context, carrying the values of the caller
// that started it. It is cancelled only when every caller waiting on it has
// given up; a single caller cancelling does not fail the others.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	values  map[K]V
	flights map[K]*call[V]
}

type call[V any] struct {
	done    chan struct{}
	val     V
	err     error
	waiters int
	cancel  context.CancelFunc
}

// New returns an empty Cache.
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		values:  make(map[K]V),
		flights: make(map[K]*call[V]),
	}
}

// Get returns the cached value for key, running load to produce it if needed.
func (c *Cache[K, V]) Get(ctx context.Context, key K, load func(context.Context) (V, error)) (V, error) {
	c.mu.Lock()
	if v, ok := c.values[key]; ok {
		c.mu.Unlock()
		return v, nil
	}

	fl, ok := c.flights[key]
	if !ok {
		loadCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		fl = &call[V]{done: make(chan struct{}), cancel: cancel}
		c.flights[key] = fl
		go c.run(loadCtx, key, fl, load)
	}
	fl.waiters++
	c.mu.Unlock()

	select {
	case <-fl.done:
		return fl.val, fl.err
	case <-ctx.Done():
		c.leave(key, fl)
		var zero V
		return zero, ctx.Err()
	}
}

// Peek returns the cached value for key without loading.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok
}

// Len returns the number of cached values.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.values)
}

// leave drops one waiter. The last one out cancels the load and detaches it,
// so a later Get starts afresh rather than joining a cancelled load.
func (c *Cache[K, V]) leave(key K, fl *call[V]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fl.waiters--
	if fl.waiters > 0 {
		return
	}
	fl.cancel()
	if c.flights[key] == fl {
		delete(c.flights, key)
	}
}

func (c *Cache[K, V]) run(ctx context.Context, key K, fl *call[V], load func(context.Context) (V, error)) {
	v, err := load(ctx)

	c.mu.Lock()
	if err == nil {
		// First committed value wins; a detached load finishing late must
		// not replace what other callers have already seen.
		if existing, ok := c.values[key]; ok {
			v = existing
		} else {
			c.values[key] = v
		}
	}
	if c.flights[key] == fl {
		delete(c.flights, key)
	}
	fl.val, fl.err = v, err
	c.mu.Unlock()

	fl.cancel()
	close(fl.done)
}
