// Package emitter implements the pulse event dispatcher.
//
// The Emitter is the orchestration point for every emission: it
// constructs the immutable event, runs the middleware pipeline,
// notifies registered listeners, and feeds reactive streams.
//
// # Emission Lifecycle
//
// Each Emit call moves through a fixed sequence:
//
//  1. Construct the event (unique ID, monotonic timestamp, metadata).
//  2. Run every middleware's Before hook in registration order. A
//     Before hook may replace the event or abort the emission.
//  3. Fan out to the listeners registered for the event name.
//  4. Schedule After hooks and stream delivery, neither of which is
//     waited on.
//
// # Listener Dispatch
//
// Listeners are started in priority order — higher priority first,
// ties broken by registration order — and run concurrently. Only start
// order is guaranteed; completion order is not, and listeners must not
// depend on it. Failures are isolated per listener: an error, panic,
// or timeout in one listener is recorded on the Result and never
// prevents another listener from running.
//
// # Middleware
//
// Middleware declare capabilities through optional interfaces
// (BeforeHook, AfterHook, ErrorHook, ShutdownHook); the emitter checks
// capability presence per middleware rather than assuming a shape.
// Before hooks run in strict registration order and may transform or
// reject. After hooks run in registration order after dispatch without
// blocking Emit's return. OnError hooks observe pipeline and
// after-hook failures; their own failures are logged and swallowed.
//
// # Typed Front
//
// The package-level generic functions Emit, On, Once and WaitFor
// accept an event.Def, binding payload types at compile time. The
// methods on Emitter are the type-erased core underneath.
//
// # Concurrency
//
// All Emitter methods are safe for concurrent use. Registration and
// removal of listeners or middleware during an in-flight emission is
// safe: the emission completes on the snapshots it took at its start.
package emitter
