package emitter

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dshills/pulse/event"
)

// Listener is the interface for event listeners.
type Listener interface {
	// Handle processes an event. A returned error is recorded on the
	// emission's Result; it never affects other listeners.
	Handle(ctx context.Context, ev event.Event) error
}

// ListenerFunc is a function adapter for Listener.
type ListenerFunc func(ctx context.Context, ev event.Event) error

// Handle implements the Listener interface.
func (f ListenerFunc) Handle(ctx context.Context, ev event.Event) error {
	return f(ctx, ev)
}

// Predicate gates delivery to a single subscription. A false return
// skips the listener silently: not a success, not a failure.
type Predicate func(ev event.Event) bool

// Subscription is the caller's handle on a registration. The caller
// never holds the underlying listener record, only this handle.
type Subscription interface {
	// ID returns the unique subscription identifier.
	ID() string

	// EventName returns the event name the listener is registered for.
	EventName() event.Name

	// Active reports whether the subscription can still receive
	// events.
	Active() bool

	// Unsubscribe removes the listener. It is idempotent and safe to
	// call during an in-flight emission; the current dispatch works on
	// its own snapshot.
	Unsubscribe()
}

// SubConfig contains configuration for a subscription.
type SubConfig struct {
	// Priority determines dispatch start order; higher values start
	// first. Equal priorities preserve registration order.
	Priority int

	// Predicate optionally gates delivery per call.
	Predicate Predicate

	// MaxCalls limits how many times the listener runs before the
	// subscription disposes itself. Zero means unlimited.
	MaxCalls int64

	// Timeout bounds each call; a call that exceeds it is recorded as
	// a TimeoutError. Zero means no timeout.
	Timeout time.Duration
}

// SubOption configures a subscription.
type SubOption func(*SubConfig)

// WithPriority sets the dispatch priority (higher starts first).
func WithPriority(p int) SubOption {
	return func(c *SubConfig) {
		c.Priority = p
	}
}

// WithPredicate gates delivery with a per-call predicate.
func WithPredicate(p Predicate) SubOption {
	return func(c *SubConfig) {
		c.Predicate = p
	}
}

// WithMaxCalls limits the listener to n invocations, after which the
// subscription disposes itself. The call that reaches the ceiling
// still executes.
func WithMaxCalls(n int64) SubOption {
	return func(c *SubConfig) {
		if n > 0 {
			c.MaxCalls = n
		}
	}
}

// WithTimeout bounds each listener call.
func WithTimeout(d time.Duration) SubOption {
	return func(c *SubConfig) {
		if d > 0 {
			c.Timeout = d
		}
	}
}

// subscription is the registry-owned listener record.
type subscription struct {
	id       string
	name     event.Name
	listener Listener
	config   SubConfig

	// seq is the registration sequence number, used as the stable
	// tie-break for equal priorities.
	seq uint64

	calls    atomic.Int64
	disposed atomic.Bool

	// remove detaches the record from the owning registry. Set once at
	// registration.
	remove func(*subscription)
}

// ID returns the subscription ID.
func (s *subscription) ID() string {
	return s.id
}

// EventName returns the registered event name.
func (s *subscription) EventName() event.Name {
	return s.name
}

// Active reports whether the subscription can still receive events.
func (s *subscription) Active() bool {
	return !s.disposed.Load()
}

// Unsubscribe removes the listener. Idempotent.
func (s *subscription) Unsubscribe() {
	if s.disposed.CompareAndSwap(false, true) {
		if s.remove != nil {
			s.remove(s)
		}
	}
}

// claim reserves one invocation against the call ceiling. The call
// that reaches the ceiling is still allowed; later claims fail.
func (s *subscription) claim() bool {
	if s.disposed.Load() {
		return false
	}
	if s.config.MaxCalls <= 0 {
		return true
	}
	return s.calls.Add(1) <= s.config.MaxCalls
}

// exhausted reports whether the call ceiling has been reached.
func (s *subscription) exhausted() bool {
	return s.config.MaxCalls > 0 && s.calls.Load() >= s.config.MaxCalls
}
