// Package eventstream merges events from independent producers into one
// ordered sequence for a single consumer.
//
// Producers never block and nothing is dropped: the queue is unbounded.
// Delivery order is arrival order.
package eventstream

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Next once the stream is closed and drained.
var ErrClosed = errors.New("event stream closed")

// Stream is an unbounded multi-producer, single-consumer queue.
type Stream[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool
	ready  chan struct{}
}

// New creates an empty stream.
func New[T any]() *Stream[T] {
	return &Stream[T]{ready: make(chan struct{}, 1)}
}

// Push appends v. It reports false if the stream is closed.
func (s *Stream[T]) Push(v T) bool {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return false
	}

	s.items = append(s.items, v)
	s.mu.Unlock()

	s.signal()

	return true
}

// Next blocks until an event is available, the context ends or the stream
// is closed and empty.
func (s *Stream[T]) Next(ctx context.Context) (T, error) {
	var zero T

	for {
		s.mu.Lock()

		if len(s.items) > 0 {
			v := s.items[0]
			s.items[0] = zero
			s.items = s.items[1:]
			s.mu.Unlock()

			return v, nil
		}

		if s.closed {
			s.mu.Unlock()
			return zero, ErrClosed
		}

		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-s.ready:
		}
	}
}

// Close stops further pushes. Events already queued are still delivered.
func (s *Stream[T]) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.signal()
}

// Len reports the number of queued events.
func (s *Stream[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}

func (s *Stream[T]) signal() {
	select {
	case s.ready <- struct{}{}:
	default:
	}
}

// Forward delivers events to sink one at a time, in order, until the stream
// is closed and drained or ctx ends. It returns nil after a clean close.
func Forward[T any](ctx context.Context, s *Stream[T], sink func(T)) error {
	for {
		v, err := s.Next(ctx)
		if errors.Is(err, ErrClosed) {
			return nil
		}

		if err != nil {
			return err
		}

		sink(v)
	}
}
