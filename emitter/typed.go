package emitter

import (
	"context"

	"github.com/dshills/pulse/event"
)

// TypedListener handles a typed payload alongside the full event.
type TypedListener[P any] func(ctx context.Context, ev event.Event, payload P) error

// Emit emits using a Def, so the payload type is checked at compile
// time against the event name's binding.
func Emit[P any](ctx context.Context, em *Emitter, def event.Def[P], payload P, opts ...EmitOption) (Result, error) {
	return em.Emit(ctx, def.Name(), payload, opts...)
}

// On registers a typed listener for a Def. Events whose payload is not
// a P (possible only if a middleware replaced the payload with a
// different type) are skipped silently, mirroring predicate skips.
func On[P any](em *Emitter, def event.Def[P], l TypedListener[P], opts ...SubOption) (Subscription, error) {
	if l == nil {
		return nil, ErrNilListener
	}
	return em.On(def.Name(), asListener(l), opts...)
}

// Once registers a typed listener that runs at most one time.
func Once[P any](em *Emitter, def event.Def[P], l TypedListener[P], opts ...SubOption) (Subscription, error) {
	if l == nil {
		return nil, ErrNilListener
	}
	return em.Once(def.Name(), asListener(l), opts...)
}

// WaitFor blocks until the next event for the Def and returns its
// typed payload.
func WaitFor[P any](ctx context.Context, em *Emitter, def event.Def[P]) (P, event.Event, error) {
	var zero P
	ev, err := em.WaitFor(ctx, def.Name())
	if err != nil {
		return zero, event.Event{}, err
	}
	p, _ := event.PayloadOf[P](ev)
	return p, ev, nil
}

// asListener adapts a typed listener to the erased Listener interface.
func asListener[P any](l TypedListener[P]) Listener {
	return ListenerFunc(func(ctx context.Context, ev event.Event) error {
		p, ok := event.PayloadOf[P](ev)
		if !ok {
			return nil
		}
		return l(ctx, ev, p)
	})
}
