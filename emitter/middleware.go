package emitter

import (
	"context"

	"github.com/dshills/pulse/event"
)

// Middleware is an interceptor in the emission pipeline. The base
// interface carries only identity; behavior is declared through the
// optional capability interfaces below, checked per middleware at
// dispatch time. A middleware implements whichever hooks it needs.
type Middleware interface {
	// Name identifies the middleware for removal and error reports.
	Name() string
}

// BeforeHook runs prior to dispatch, strictly in registration order.
// It may transform the event by returning a replacement, or abort the
// emission by returning an error: no listener is notified, every
// middleware's OnError is invoked best-effort, and Emit reports a
// PipelineError.
type BeforeHook interface {
	Before(ctx context.Context, ev event.Event) (event.Event, error)
}

// AfterHook runs after dispatch, in registration order, without
// blocking Emit's return. An After error routes to the OnError hooks;
// it cannot abort anything, since dispatch already happened.
type AfterHook interface {
	After(ctx context.Context, ev event.Event) error
}

// ErrorHook is invoked on any pipeline or after-hook failure. Failures
// of OnError itself are swallowed and logged by the emitter.
type ErrorHook interface {
	OnError(err error, ev event.Event)
}

// ShutdownHook is invoked best-effort during emitter Close.
type ShutdownHook interface {
	Shutdown(ctx context.Context) error
}

// Func is a bare before-style interceptor: transform the event or
// reject it. Named wraps one into a Middleware.
type Func func(ctx context.Context, ev event.Event) (event.Event, error)

// Named adapts a Func into a before-only Middleware with the given
// name.
func Named(name string, fn Func) Middleware {
	return &funcMiddleware{name: name, fn: fn}
}

type funcMiddleware struct {
	name string
	fn   Func
}

func (m *funcMiddleware) Name() string {
	return m.name
}

func (m *funcMiddleware) Before(ctx context.Context, ev event.Event) (event.Event, error) {
	return m.fn(ctx, ev)
}
