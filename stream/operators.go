package stream

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Filter forwards only values the predicate accepts. A panicking
// predicate terminates the downstream with an error.
func (s *Stream[T]) Filter(pred func(T) bool) *Stream[T] {
	out := derived[T](s.clk)
	s.Subscribe(Observer[T]{
		OnNext: func(v T) {
			keep, err := guardPred(pred, v)
			if err != nil {
				out.Error(err)
				return
			}
			if keep {
				out.Next(v)
			}
		},
		OnError:    out.Error,
		OnComplete: out.Complete,
	})
	return out
}

// Map transforms each value through fn onto a downstream of a possibly
// different type. A returned error (or a panic) terminates the
// downstream with that error.
func Map[T, U any](s *Stream[T], fn func(T) (U, error)) *Stream[U] {
	out := derived[U](s.clk)
	s.Subscribe(Observer[T]{
		OnNext: func(v T) {
			mapped, err := guardMap(fn, v)
			if err != nil {
				out.Error(err)
				return
			}
			out.Next(mapped)
		},
		OnError:    out.Error,
		OnComplete: out.Complete,
	})
	return out
}

// Take forwards the first n values then completes the downstream and
// unsubscribes from the upstream. Take(0) (or negative) completes
// immediately without subscribing.
func (s *Stream[T]) Take(n int) *Stream[T] {
	out := derived[T](s.clk)
	if n <= 0 {
		out.Complete()
		return out
	}

	var (
		mu        sync.Mutex
		remaining = n
		cancel    func()
	)
	c := s.Subscribe(Observer[T]{
		OnNext: func(v T) {
			mu.Lock()
			if remaining == 0 {
				mu.Unlock()
				return
			}
			remaining--
			last := remaining == 0
			stop := cancel
			mu.Unlock()

			out.Next(v)
			if last {
				out.Complete()
				if stop != nil {
					stop()
				}
			}
		},
		OnError:    out.Error,
		OnComplete: out.Complete,
	})
	mu.Lock()
	cancel = c
	mu.Unlock()
	return out
}

// Skip drops the first n values and forwards the rest.
func (s *Stream[T]) Skip(n int) *Stream[T] {
	out := derived[T](s.clk)

	var (
		mu     sync.Mutex
		toSkip = n
	)
	s.Subscribe(Observer[T]{
		OnNext: func(v T) {
			mu.Lock()
			if toSkip > 0 {
				toSkip--
				mu.Unlock()
				return
			}
			mu.Unlock()
			out.Next(v)
		},
		OnError:    out.Error,
		OnComplete: out.Complete,
	})
	return out
}

// Distinct suppresses any value whose key has been seen before, for
// the stream's entire lifetime. The seen-key set is unbounded; callers
// with long-lived, high-cardinality streams should use DistinctLimit.
//
// A nil key function uses the value's EventKey() if it implements
// interface{ EventKey() any } (event.Event does), otherwise the value
// itself; in that case values must be comparable.
func (s *Stream[T]) Distinct(key func(T) any) *Stream[T] {
	out := derived[T](s.clk)

	var (
		mu   sync.Mutex
		seen = make(map[any]struct{})
	)
	s.Subscribe(Observer[T]{
		OnNext: func(v T) {
			k, err := guardKey(key, v)
			if err != nil {
				out.Error(err)
				return
			}
			mu.Lock()
			if _, dup := seen[k]; dup {
				mu.Unlock()
				return
			}
			seen[k] = struct{}{}
			mu.Unlock()
			out.Next(v)
		},
		OnError:    out.Error,
		OnComplete: out.Complete,
	})
	return out
}

// DistinctLimit is Distinct with the seen-key set bounded by an LRU of
// the given capacity: once more than capacity distinct keys have been
// seen, the least recently seen keys are forgotten and may be
// forwarded again. A capacity of zero or less falls back to the
// unbounded Distinct.
func (s *Stream[T]) DistinctLimit(capacity int, key func(T) any) *Stream[T] {
	if capacity <= 0 {
		return s.Distinct(key)
	}
	out := derived[T](s.clk)

	// capacity > 0, so construction cannot fail.
	seen, _ := lru.New[any, struct{}](capacity)

	var mu sync.Mutex
	s.Subscribe(Observer[T]{
		OnNext: func(v T) {
			k, err := guardKey(key, v)
			if err != nil {
				out.Error(err)
				return
			}
			mu.Lock()
			if _, dup := seen.Get(k); dup {
				mu.Unlock()
				return
			}
			seen.Add(k, struct{}{})
			mu.Unlock()
			out.Next(v)
		},
		OnError:    out.Error,
		OnComplete: out.Complete,
	})
	return out
}

// DistinctUntilChanged suppresses only consecutive duplicates: a value
// is forwarded whenever its key differs from the previous value's key.
// Key semantics match Distinct.
func (s *Stream[T]) DistinctUntilChanged(key func(T) any) *Stream[T] {
	out := derived[T](s.clk)

	var (
		mu      sync.Mutex
		started bool
		last    any
	)
	s.Subscribe(Observer[T]{
		OnNext: func(v T) {
			k, err := guardKey(key, v)
			if err != nil {
				out.Error(err)
				return
			}
			mu.Lock()
			if started && last == k {
				mu.Unlock()
				return
			}
			started = true
			last = k
			mu.Unlock()
			out.Next(v)
		},
		OnError:    out.Error,
		OnComplete: out.Complete,
	})
	return out
}

// Buffer accumulates values into slices of the given size, flushing
// each full slice downstream. Any partial buffer is flushed on
// completion. A size of zero or less is treated as one.
func (s *Stream[T]) Buffer(size int) *Stream[[]T] {
	if size <= 0 {
		size = 1
	}
	out := derived[[]T](s.clk)

	var (
		mu  sync.Mutex
		buf []T
	)
	s.Subscribe(Observer[T]{
		OnNext: func(v T) {
			mu.Lock()
			buf = append(buf, v)
			var full []T
			if len(buf) >= size {
				full = buf
				buf = nil
			}
			mu.Unlock()
			if full != nil {
				out.Next(full)
			}
		},
		OnError: func(err error) {
			mu.Lock()
			buf = nil
			mu.Unlock()
			out.Error(err)
		},
		OnComplete: func() {
			mu.Lock()
			partial := buf
			buf = nil
			mu.Unlock()
			if len(partial) > 0 {
				out.Next(partial)
			}
			out.Complete()
		},
	})
	return out
}

// defaultKeyer is implemented by values that carry their own identity
// key; event.Event implements it with its ID.
type defaultKeyer interface {
	EventKey() any
}

// guardKey resolves a value's dedup key, recovering panics.
func guardKey[T any](key func(T) any, v T) (k any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("stream key function panicked: %v", r)
		}
	}()
	if key != nil {
		return key(v), nil
	}
	if dk, ok := any(v).(defaultKeyer); ok {
		return dk.EventKey(), nil
	}
	return v, nil
}

// guardPred evaluates a predicate, recovering panics.
func guardPred[T any](pred func(T) bool, v T) (keep bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("stream predicate panicked: %v", r)
		}
	}()
	return pred(v), nil
}

// guardMap applies a mapper, recovering panics.
func guardMap[T, U any](fn func(T) (U, error), v T) (mapped U, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("stream mapper panicked: %v", r)
		}
	}()
	return fn(v)
}
