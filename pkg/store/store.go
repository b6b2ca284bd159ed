// Package store provides a concurrent single-slot cache bridging the relay's
// ingest path (one writer) and its serve path (many readers).
package store

import (
	"fmt"
	"sync"
)

// Store holds exactly one value of type T. Readers observe either the initial
// value or some fully written update, never a partial write. There is no
// history: Update unconditionally replaces the previous value.
//
// A *Store is the handle. Copying the pointer shares the same cell and never
// copies the value.
type Store[T any] struct {
	// mu guards value and poisoned. Readers share it, writers exclude
	// everyone.
	mu       sync.RWMutex
	value    T
	poisoned bool

	// clone copies values out of (and into) the cell so callers never hold a
	// reference into it.
	clone func(T) T
}

// Option configures a Store created with New.
type Option[T any] func(*Store[T])

// WithClone sets the function used to copy values in and out of the cell.
// The default is a plain assignment, which is enough for value types such as
// strings.
func WithClone[T any](clone func(T) T) Option[T] {
	return func(s *Store[T]) {
		if clone != nil {
			s.clone = clone
		}
	}
}

// New creates a Store holding initial.
func New[T any](initial T, opts ...Option[T]) *Store[T] {
	s := &Store[T]{
		clone: func(v T) T { return v },
	}
	for _, opt := range opts {
		opt(s)
	}

	s.value = s.clone(initial)
	return s
}

// Get returns a copy of the current value. It may wait briefly behind a
// writer but never indefinitely.
func (s *Store[T]) Get() (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.poisoned {
		var zero T
		return zero, ErrPoisoned
	}

	return s.clone(s.value), nil
}

// Update replaces the current value and returns a copy of the value written.
func (s *Store[T]) Update(value T) (T, error) {
	return s.Modify(func(T) T { return value })
}

// Modify replaces the current value with fn applied to it, under the write
// lock, and returns a copy of the value written.
//
// If fn (or the clone function) panics, the Store is poisoned: the panic is
// recovered, this call returns an error wrapping ErrPoisoned and every later
// operation returns ErrPoisoned.
func (s *Store[T]) Modify(fn func(T) T) (written T, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.poisoned {
		return written, ErrPoisoned
	}

	defer func() {
		if r := recover(); r != nil {
			s.poisoned = true
			var zero T
			written = zero
			err = fmt.Errorf("%w: writer panicked: %v", ErrPoisoned, r)
		}
	}()

	next := s.clone(fn(s.clone(s.value)))
	s.value = next

	return s.clone(next), nil
}

// Poisoned reports whether a writer has poisoned the Store.
func (s *Store[T]) Poisoned() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.poisoned
}
