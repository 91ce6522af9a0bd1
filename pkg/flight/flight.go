package flight

import (
	"sync"
	"sync/atomic"
	"time"
)

// Cache coalesces concurrent calls for the same key and remembers successful
// results until their expiry.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	finished map[K]*entry[V]
	pending  map[K]*call[V]

	work func(K) (V, error)

	// ttl in nanoseconds; <= 0 holds results forever.
	ttl atomic.Int64
}

type entry[V any] struct {
	val V
	// zero deadline never expires
	deadline time.Time
}

type call[V any] struct {
	val  V
	err  error
	done chan struct{}
}

func NewCache[K comparable, V any](work func(K) (V, error)) *Cache[K, V] {
	c := &Cache[K, V]{
		finished: make(map[K]*entry[V]),
		pending:  make(map[K]*call[V]),
		work:     work,
	}
	c.ttl.Store(int64(time.Hour))
	return c
}

// Expiry sets how long future results are remembered; d <= 0 keeps them until Forget or Force.
func (c *Cache[K, V]) Expiry(d time.Duration) {
	c.ttl.Store(max(int64(d), 0))
}

// Get returns the remembered value for k, joins an in-flight call, or runs work.
func (c *Cache[K, V]) Get(k K) (V, error) {
	c.mu.Lock()
	if v, ok := c.lookup(k); ok {
		c.mu.Unlock()
		return v, nil
	}
	if p, ok := c.pending[k]; ok {
		c.mu.Unlock()
		<-p.done
		return p.val, p.err
	}
	p := c.begin(k)
	c.mu.Unlock()

	return c.finish(k, p)
}

// Force always runs work, waiting for any in-flight call on k to settle first.
func (c *Cache[K, V]) Force(k K) (V, error) {
	for {
		c.mu.Lock()
		p, ok := c.pending[k]
		if !ok {
			break
		}
		c.mu.Unlock()
		<-p.done
	}
	p := c.begin(k)
	c.mu.Unlock()

	return c.finish(k, p)
}

// Peek returns a remembered value without running work.
func (c *Cache[K, V]) Peek(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookup(k)
}

// Forget drops the remembered value for k.
func (c *Cache[K, V]) Forget(k K) {
	c.mu.Lock()
	delete(c.finished, k)
	c.mu.Unlock()
}

// caller holds c.mu
func (c *Cache[K, V]) lookup(k K) (V, bool) {
	var zero V
	e, ok := c.finished[k]
	if !ok {
		return zero, false
	}
	if !e.deadline.IsZero() && time.Now().After(e.deadline) {
		delete(c.finished, k)
		return zero, false
	}
	return e.val, true
}

// caller holds c.mu
func (c *Cache[K, V]) begin(k K) *call[V] {
	p := &call[V]{done: make(chan struct{})}
	c.pending[k] = p
	return p
}

func (c *Cache[K, V]) finish(k K, p *call[V]) (V, error) {
	p.val, p.err = c.work(k)

	c.mu.Lock()
	if p.err == nil {
		c.store(k, p.val)
	}
	delete(c.pending, k)
	close(p.done)
	c.mu.Unlock()

	return p.val, p.err
}

// caller holds c.mu
func (c *Cache[K, V]) store(k K, val V) {
	e := &entry[V]{val: val}
	if d := time.Duration(c.ttl.Load()); d > 0 {
		e.deadline = time.Now().Add(d)
	}
	c.finished[k] = e
}
