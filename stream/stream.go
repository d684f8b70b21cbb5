package stream

import (
	"sync"

	"github.com/benbjohnson/clock"
)

// State is a stream's lifecycle state.
type State int32

const (
	// StateActive means the stream is accepting and forwarding values.
	StateActive State = iota

	// StateCompleted means the stream terminated normally.
	StateCompleted

	// StateErrored means the stream terminated with an error.
	StateErrored
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateCompleted:
		return "completed"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Observer receives a stream's notifications. Any nil callback is
// simply skipped.
type Observer[T any] struct {
	// OnNext receives each value while the stream is active.
	OnNext func(T)

	// OnError receives the terminal error, at most once.
	OnError func(error)

	// OnComplete is called on normal termination, at most once.
	OnComplete func()
}

// Stream is a push-based, multi-subscriber sequence node.
type Stream[T any] struct {
	clk clock.Clock

	mu        sync.Mutex
	observers []entry[T]
	nextID    uint64
	state     State
	err       error
}

type entry[T any] struct {
	id  uint64
	obs Observer[T]
}

// Option configures a stream.
type Option func(*config)

type config struct {
	clk clock.Clock
}

// WithClock sets the clock used by time-based operators on this stream
// and every stream derived from it.
func WithClock(clk clock.Clock) Option {
	return func(c *config) {
		if clk != nil {
			c.clk = clk
		}
	}
}

// New creates an active stream.
func New[T any](opts ...Option) *Stream[T] {
	cfg := config{clk: clock.New()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Stream[T]{clk: cfg.clk}
}

// derived creates a child stream sharing the parent's clock. The type
// parameter is free so Map can change it.
func derived[T any](clk clock.Clock) *Stream[T] {
	return &Stream[T]{clk: clk}
}

// Subscribe attaches an observer and returns an unsubscribe function
// (idempotent, safe to call multiple times).
//
// Subscribing to a terminated stream does not fail: the observer is
// immediately notified of the terminal state and is not retained.
func (s *Stream[T]) Subscribe(obs Observer[T]) func() {
	s.mu.Lock()
	if s.state != StateActive {
		state, err := s.state, s.err
		s.mu.Unlock()
		switch state {
		case StateErrored:
			if obs.OnError != nil {
				obs.OnError(err)
			}
		case StateCompleted:
			if obs.OnComplete != nil {
				obs.OnComplete()
			}
		}
		return func() {}
	}

	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, entry[T]{id: id, obs: obs})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, e := range s.observers {
			if e.id == id {
				s.observers = append(s.observers[:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// Next pushes a value to every observer in subscription order. It is a
// no-op after the stream terminates.
func (s *Stream[T]) Next(v T) {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return
	}
	snapshot := make([]entry[T], len(s.observers))
	copy(snapshot, s.observers)
	s.mu.Unlock()

	for _, e := range snapshot {
		if e.obs.OnNext != nil {
			e.obs.OnNext(v)
		}
	}
}

// Error terminates the stream with an error. Terminal and idempotent;
// the observer set is released afterwards.
func (s *Stream[T]) Error(err error) {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return
	}
	s.state = StateErrored
	s.err = err
	snapshot := s.observers
	s.observers = nil
	s.mu.Unlock()

	for _, e := range snapshot {
		if e.obs.OnError != nil {
			e.obs.OnError(err)
		}
	}
}

// Complete terminates the stream normally. Terminal and idempotent;
// the observer set is released afterwards.
func (s *Stream[T]) Complete() {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return
	}
	s.state = StateCompleted
	snapshot := s.observers
	s.observers = nil
	s.mu.Unlock()

	for _, e := range snapshot {
		if e.obs.OnComplete != nil {
			e.obs.OnComplete()
		}
	}
}

// State returns the stream's lifecycle state.
func (s *Stream[T]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the terminal error, if the stream errored.
func (s *Stream[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Terminal reports whether the stream has completed or errored.
func (s *Stream[T]) Terminal() bool {
	return s.State() != StateActive
}

// observerCount returns the number of attached observers.
func (s *Stream[T]) observerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.observers)
}
