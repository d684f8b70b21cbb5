package stream

import "sync/atomic"

// CombineWith merges two streams of the same type into one downstream.
// The downstream completes only once both upstreams have completed;
// either upstream's error terminates the downstream immediately.
func (s *Stream[T]) CombineWith(other *Stream[T]) *Stream[T] {
	out := derived[T](s.clk)

	var remaining atomic.Int32
	remaining.Store(2)

	obs := Observer[T]{
		OnNext:  out.Next,
		OnError: out.Error,
		OnComplete: func() {
			if remaining.Add(-1) == 0 {
				out.Complete()
			}
		},
	}
	s.Subscribe(obs)
	other.Subscribe(obs)
	return out
}
