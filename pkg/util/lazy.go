package util

import "sync"

type lazyState uint8

const (
	lazyUnresolved lazyState = iota
	lazyResolving
	lazyResolved
)

// Lazy is a memoizing cell around a resolver function.
//
// The resolver runs at most once. A re-entrant call made while the resolver
// is still running (a type that refers back to itself, for example) gets the
// zero value instead of recursing forever. The mutex only protects the
// state transitions; a second goroutine racing an in-flight resolution also
// observes the zero value.
type Lazy[T any] struct {
	mu      sync.Mutex
	state   lazyState
	value   T
	resolve func() T
}

// NewLazy wraps resolve in a Lazy cell.
func NewLazy[T any](resolve func() T) *Lazy[T] {
	return &Lazy[T]{resolve: resolve}
}

// LazyValue returns an already resolved cell holding v.
func LazyValue[T any](v T) *Lazy[T] {
	return &Lazy[T]{state: lazyResolved, value: v}
}

// Get resolves the cell on first use and returns the memoized value.
// A nil cell yields the zero value.
func (l *Lazy[T]) Get() T {
	var zero T
	if l == nil {
		return zero
	}

	l.mu.Lock()
	switch l.state {
	case lazyResolved:
		v := l.value
		l.mu.Unlock()
		return v
	case lazyResolving:
		l.mu.Unlock()
		return zero
	}
	l.state = lazyResolving
	resolve := l.resolve
	l.mu.Unlock()

	var v T
	if resolve != nil {
		v = resolve()
	}

	l.mu.Lock()
	l.value = v
	l.state = lazyResolved
	l.resolve = nil
	l.mu.Unlock()
	return v
}

// Resolved reports whether Get has already produced a value.
func (l *Lazy[T]) Resolved() bool {
	if l == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == lazyResolved
}
