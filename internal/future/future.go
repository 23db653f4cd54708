// Package future provides a single-shot settlement primitive used as the
// injection barrier between the content and document build phases.
package future

import (
	"context"
	"sync"
)

// Future is a signal that settles exactly once, either resolved with a value or
// rejected with an error. Await blocks until settlement or context cancellation.
// A settled Future never changes state; later Resolve/Reject calls are ignored
// and reported via their return value.
//
// A fresh instance must be constructed per build cycle and never reused.
type Future[T any] struct {
	once sync.Once
	done chan struct{}
	val  T
	err  error
}

// New constructs a pending future.
func New[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolve settles the future with a value. Returns false if already settled.
func (f *Future[T]) Resolve(v T) bool {
	settled := false
	f.once.Do(func() {
		f.val = v
		close(f.done)
		settled = true
	})
	return settled
}

// Reject settles the future with an error. Returns false if already settled.
func (f *Future[T]) Reject(err error) bool {
	settled := false
	f.once.Do(func() {
		f.err = err
		close(f.done)
		settled = true
	})
	return settled
}

// Await blocks until the future settles or ctx is done. On settlement it
// returns the resolved value or the rejection error; on cancellation it returns
// the context error.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Settled reports whether the future has been resolved or rejected.
func (f *Future[T]) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
