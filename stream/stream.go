// Package stream adapts a host "fetch next element" call into a lazy,
// forward-only sequence.
//
// Each pull issues exactly one fetch. Once the source reports the end, the
// stream stays ended and never calls the host again. Nothing is fetched
// ahead of the caller, and elements are not retained, so a consumed
// element cannot be read again.
package stream

import (
	"context"
	"iter"
	"sync"
)

// FetchFunc returns the next element, or ok=false at end of stream.
type FetchFunc[T any] func(ctx context.Context) (value T, ok bool, err error)

// Stream is a single-pass pull sequence.
type Stream[T any] struct {
	fetch  FetchFunc[T]
	onDone func()
	pulls  int
	done   bool
	mu     sync.Mutex
}

// New wraps fetch.
func New[T any](fetch FetchFunc[T]) *Stream[T] {
	return &Stream[T]{fetch: fetch}
}

// OnDone registers f to run once, when end of stream is first observed.
// Adapters use it to release the host handle behind the stream.
func (s *Stream[T]) OnDone(f func()) *Stream[T] {
	s.onDone = f
	return s
}

// Next returns the next element. ok is false at end of stream, and stays
// false for every later call. An error from the host is returned as-is and
// does not end the stream.
func (s *Stream[T]) Next(ctx context.Context) (T, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	if s.done {
		return zero, false, nil
	}

	s.pulls++
	v, ok, err := s.fetch(ctx)
	if err != nil {
		return zero, false, err
	}
	if !ok {
		s.finish()
		return zero, false, nil
	}
	return v, true, nil
}

// Stop ends the stream without draining it. Later pulls report end of
// stream and the OnDone hook runs if it has not already.
func (s *Stream[T]) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.done {
		s.finish()
	}
}

// Done reports whether end of stream has been observed.
func (s *Stream[T]) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Pulls returns how many times the host has been asked for an element.
func (s *Stream[T]) Pulls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pulls
}

// All ranges over the remaining elements. Iteration ends at end of stream
// or after yielding the first error. Breaking out early leaves the stream
// positioned after the last element yielded.
func (s *Stream[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			v, ok, err := s.Next(ctx)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if !ok {
				return
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

// Collect drains the stream into a slice.
func (s *Stream[T]) Collect(ctx context.Context) ([]T, error) {
	var out []T
	for v, err := range s.All(ctx) {
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}

// FromSlice returns a stream over values, for tests and local sources.
func FromSlice[T any](values []T) *Stream[T] {
	i := 0
	return New(func(context.Context) (T, bool, error) {
		var zero T
		if i >= len(values) {
			return zero, false, nil
		}
		v := values[i]
		i++
		return v, true, nil
	})
}

// finish requires s.mu.
func (s *Stream[T]) finish() {
	s.done = true
	if s.onDone != nil {
		f := s.onDone
		s.onDone = nil
		f()
	}
}
