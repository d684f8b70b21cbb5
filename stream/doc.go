// Package stream provides push-based, multi-subscriber reactive
// streams with a fixed operator set.
//
// A Stream[T] is a single-producer, multi-consumer node: the producer
// calls Next zero or more times and then at most one of Complete or
// Error. Both are terminal and idempotent; after either, every further
// call is a silent no-op and the observer set is released.
//
// Operators build a downstream stream subscribed to the upstream:
//
//	first := em.Stream(events.OrderCreated.Name()).
//	    Filter(func(ev event.Event) bool { return amount(ev) > 100 }).
//	    Take(1)
//
// Order is preserved: a downstream sees values in the order its
// upstream emitted them.
//
// Subscribing to a stream that has already terminated never fails: the
// observer is immediately notified of the terminal state (OnComplete
// or OnError) and is not retained. This keeps operator chains
// composable regardless of when they are assembled.
//
// Time-based operators (Debounce, Throttle, BufferTime) schedule on
// the stream's clock; tests inject clock.NewMock via WithClock and
// drive timers deterministically.
package stream
