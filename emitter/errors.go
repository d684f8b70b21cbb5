package emitter

import (
	"errors"
	"fmt"
	"time"

	"github.com/dshills/pulse/event"
)

// Sentinel errors for the emitter.
var (
	// ErrClosed is returned when operations are attempted on a closed
	// emitter.
	ErrClosed = errors.New("emitter is closed")

	// ErrUnknownEvent is returned when a name outside the closed set
	// is used.
	ErrUnknownEvent = errors.New("unknown event name")

	// ErrNilListener is returned when a nil listener is registered.
	ErrNilListener = errors.New("listener cannot be nil")

	// ErrTooManyListeners is returned when registering would exceed
	// the configured per-event listener limit.
	ErrTooManyListeners = errors.New("too many listeners for event")

	// ErrListenerTimeout marks a listener that exceeded its per-call
	// timeout. Match with errors.Is against a TimeoutError.
	ErrListenerTimeout = errors.New("listener timeout exceeded")

	// ErrListenerPanic marks a listener that panicked. Match with
	// errors.Is against a PanicError.
	ErrListenerPanic = errors.New("listener panicked")
)

// PipelineError reports a before-hook failure that aborted dispatch.
// It is returned from Emit; no listener ran for the emission.
type PipelineError struct {
	// Middleware is the name of the middleware that failed.
	Middleware string

	// Event is the event as it stood when the middleware rejected it.
	Event event.Event

	// Err is the middleware's error.
	Err error
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	return fmt.Sprintf("middleware %q rejected event %s: %v", e.Middleware, e.Event.Name, e.Err)
}

// Unwrap returns the underlying middleware error.
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// ListenerError reports one listener's failed notification. Listener
// failures never abort an emission; they are collected on the Result.
type ListenerError struct {
	// ListenerID is the subscription ID whose listener failed.
	ListenerID string

	// Event is the event being delivered.
	Event event.Event

	// Err is the originating error: the listener's returned error, a
	// TimeoutError, or a PanicError.
	Err error

	// At is when the failure was recorded.
	At time.Time
}

// Error implements the error interface.
func (e *ListenerError) Error() string {
	return fmt.Sprintf("listener %s failed for event %s: %v", e.ListenerID, e.Event.Name, e.Err)
}

// Unwrap returns the originating error.
func (e *ListenerError) Unwrap() error {
	return e.Err
}

// TimeoutError reports a listener call exceeding its timeout.
type TimeoutError struct {
	// ListenerID is the subscription whose call timed out.
	ListenerID string

	// Timeout is the configured per-call limit.
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("listener %s exceeded timeout %v", e.ListenerID, e.Timeout)
}

// Is allows errors.Is to match TimeoutError with ErrListenerTimeout.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrListenerTimeout
}

// PanicError wraps a recovered listener panic as an error.
type PanicError struct {
	// ListenerID is the subscription whose listener panicked.
	ListenerID string

	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace at the time of the panic.
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("listener %s panicked: %v", e.ListenerID, e.Value)
}

// Is allows errors.Is to match PanicError with ErrListenerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrListenerPanic
}
