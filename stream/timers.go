package stream

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Debounce buffers the latest value and forwards it only once the
// given quiet period elapses with no further values. On upstream
// completion any pending value is flushed before the downstream
// completes.
func (s *Stream[T]) Debounce(d time.Duration) *Stream[T] {
	out := derived[T](s.clk)

	var (
		mu      sync.Mutex
		pending T
		has     bool
		timer   *clock.Timer
	)
	flush := func() {
		mu.Lock()
		if !has {
			mu.Unlock()
			return
		}
		v := pending
		has = false
		mu.Unlock()
		out.Next(v)
	}
	s.Subscribe(Observer[T]{
		OnNext: func(v T) {
			mu.Lock()
			pending = v
			has = true
			if timer != nil {
				timer.Stop()
			}
			timer = s.clk.AfterFunc(d, flush)
			mu.Unlock()
		},
		OnError: func(err error) {
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			has = false
			mu.Unlock()
			out.Error(err)
		},
		OnComplete: func() {
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()
			flush()
			out.Complete()
		},
	})
	return out
}

// Throttle forwards a value immediately when at least d has elapsed
// since the last forwarded value. Values arriving inside the window
// coalesce (latest wins) into exactly one trailing emission at the
// window boundary. A pending trailing value is flushed on completion.
func (s *Stream[T]) Throttle(d time.Duration) *Stream[T] {
	out := derived[T](s.clk)

	var (
		mu       sync.Mutex
		last     time.Time
		pending  T
		has      bool
		trailing *clock.Timer
	)
	fire := func() {
		mu.Lock()
		trailing = nil
		if !has {
			mu.Unlock()
			return
		}
		v := pending
		has = false
		last = s.clk.Now()
		mu.Unlock()
		out.Next(v)
	}
	s.Subscribe(Observer[T]{
		OnNext: func(v T) {
			now := s.clk.Now()
			mu.Lock()
			if last.IsZero() || now.Sub(last) >= d {
				last = now
				mu.Unlock()
				out.Next(v)
				return
			}
			pending = v
			has = true
			if trailing == nil {
				trailing = s.clk.AfterFunc(d-now.Sub(last), fire)
			}
			mu.Unlock()
		},
		OnError: func(err error) {
			mu.Lock()
			if trailing != nil {
				trailing.Stop()
			}
			has = false
			mu.Unlock()
			out.Error(err)
		},
		OnComplete: func() {
			mu.Lock()
			if trailing != nil {
				trailing.Stop()
				trailing = nil
			}
			v := pending
			flush := has
			has = false
			mu.Unlock()
			if flush {
				out.Next(v)
			}
			out.Complete()
		},
	})
	return out
}

// BufferTime accumulates values and flushes the batch every interval.
// Empty intervals flush nothing. Any partial batch is flushed on
// completion, and the interval timer stops once the stream terminates.
func (s *Stream[T]) BufferTime(interval time.Duration) *Stream[[]T] {
	out := derived[[]T](s.clk)

	var (
		mu      sync.Mutex
		buf     []T
		ticker  *clock.Timer
		stopped bool
	)
	var tick func()
	tick = func() {
		mu.Lock()
		if stopped {
			mu.Unlock()
			return
		}
		batch := buf
		buf = nil
		ticker = s.clk.AfterFunc(interval, tick)
		mu.Unlock()
		if len(batch) > 0 {
			out.Next(batch)
		}
	}
	mu.Lock()
	ticker = s.clk.AfterFunc(interval, tick)
	mu.Unlock()

	stop := func() (batch []T) {
		mu.Lock()
		stopped = true
		if ticker != nil {
			ticker.Stop()
		}
		batch = buf
		buf = nil
		mu.Unlock()
		return batch
	}
	s.Subscribe(Observer[T]{
		OnNext: func(v T) {
			mu.Lock()
			if !stopped {
				buf = append(buf, v)
			}
			mu.Unlock()
		},
		OnError: func(err error) {
			stop()
			out.Error(err)
		},
		OnComplete: func() {
			if batch := stop(); len(batch) > 0 {
				out.Next(batch)
			}
			out.Complete()
		},
	})
	return out
}
