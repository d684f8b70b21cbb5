package stream

import (
	"context"
	"sync"
)

// First blocks until the stream emits a value, then unsubscribes and
// returns it. It returns the stream's error if the stream errors
// first, ErrNoValue if it completes without emitting, and the context
// error if the context is done first.
func (s *Stream[T]) First(ctx context.Context) (T, error) {
	type outcome struct {
		v   T
		err error
	}

	ch := make(chan outcome, 1)
	var once sync.Once
	settle := func(o outcome) {
		once.Do(func() { ch <- o })
	}

	cancel := s.Subscribe(Observer[T]{
		OnNext:     func(v T) { settle(outcome{v: v}) },
		OnError:    func(err error) { settle(outcome{err: err}) },
		OnComplete: func() { settle(outcome{err: ErrNoValue}) },
	})
	defer cancel()

	var zero T
	select {
	case o := <-ch:
		return o.v, o.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Collect blocks until the stream completes and returns every value it
// emitted, in order. It returns the stream's error if the stream
// errors, discarding the values collected so far, and the context
// error if the context is done first.
func (s *Stream[T]) Collect(ctx context.Context) ([]T, error) {
	done := make(chan error, 1)
	var once sync.Once
	settle := func(err error) {
		once.Do(func() { done <- err })
	}

	var (
		mu     sync.Mutex
		values []T
	)
	cancel := s.Subscribe(Observer[T]{
		OnNext: func(v T) {
			mu.Lock()
			values = append(values, v)
			mu.Unlock()
		},
		OnError:    settle,
		OnComplete: func() { settle(nil) },
	})
	defer cancel()

	select {
	case err := <-done:
		if err != nil {
			return nil, err
		}
		mu.Lock()
		defer mu.Unlock()
		return values, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
