package pool

import "sync"

// Pool is a typed wrapper over sync.Pool.
type Pool[T any] struct {
	p sync.Pool
}

func New[T any](fn func() T) *Pool[T] {
	return &Pool[T]{p: sync.Pool{New: func() any { return fn() }}}
}

func (p *Pool[T]) Get() T {
	return p.p.Get().(T)
}

// Put returns v to the pool. Values implementing Reset are reset first.
func (p *Pool[T]) Put(v T) {
	if r, ok := any(v).(interface{ Reset() }); ok {
		r.Reset()
	}
	p.p.Put(v)
}
