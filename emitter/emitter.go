package emitter

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/dshills/pulse/emitter/dispatch"
	"github.com/dshills/pulse/event"
	"github.com/dshills/pulse/stream"
)

// Emitter is the event dispatcher: it constructs events, runs the
// middleware pipeline, fans out to listeners in priority order with
// per-listener fault isolation, and feeds reactive streams.
//
// An Emitter exclusively owns its listener registry and middleware
// list. Registration and removal are safe to call during an in-flight
// emission; the emission completes on the snapshot it took at start.
type Emitter struct {
	log *zap.Logger
	clk clock.Clock

	reg  *registry
	exec *dispatch.Executor
	hub  *hub

	mwMu       sync.RWMutex
	middleware []Middleware

	// bg supervises fire-and-forget work (after-hooks). Close drains
	// it so late panics are logged rather than lost.
	bg *conc.WaitGroup

	closed  atomic.Bool
	started time.Time

	totalEvents atomic.Uint64

	stampMu   sync.Mutex
	lastStamp time.Time
}

// New creates an emitter.
func New(opts ...Option) *Emitter {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Emitter{
		log:     cfg.logger,
		clk:     cfg.clk,
		reg:     newRegistry(cfg.maxListeners),
		exec:    dispatch.NewExecutor(dispatch.WithClock(cfg.clk)),
		hub:     newHub(cfg.streamBuffer, cfg.clk, cfg.logger),
		bg:      conc.NewWaitGroup(),
		started: cfg.clk.Now(),
	}
}

// On registers a listener for an event name and returns its
// subscription handle. The listener starts receiving emissions that
// begin after registration.
func (em *Emitter) On(name event.Name, l Listener, opts ...SubOption) (Subscription, error) {
	if em.closed.Load() {
		return nil, ErrClosed
	}
	if l == nil {
		return nil, ErrNilListener
	}
	if !event.Registered(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, name)
	}

	var cfg SubConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	sub := &subscription{
		id:       uuid.NewString(),
		name:     name,
		listener: l,
		config:   cfg,
		remove:   em.reg.remove,
	}
	if err := em.reg.add(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Once registers a listener that runs at most one time and then
// disposes itself. Any WithMaxCalls option is overridden.
func (em *Emitter) Once(name event.Name, l Listener, opts ...SubOption) (Subscription, error) {
	opts = append(opts[:len(opts):len(opts)], WithMaxCalls(1))
	return em.On(name, l, opts...)
}

// WaitFor blocks until the next matching event is emitted or the
// context is done. At most one event is delivered even under
// concurrent emissions.
func (em *Emitter) WaitFor(ctx context.Context, name event.Name) (event.Event, error) {
	ch := make(chan event.Event, 1)
	sub, err := em.Once(name, ListenerFunc(func(ctx context.Context, ev event.Event) error {
		select {
		case ch <- ev:
		default:
		}
		return nil
	}))
	if err != nil {
		return event.Event{}, err
	}
	defer sub.Unsubscribe()

	select {
	case ev := <-ch:
		return ev, nil
	case <-ctx.Done():
		return event.Event{}, ctx.Err()
	}
}

// RemoveAllListeners disposes every listener, or only those for the
// given names. Safe to call during an in-flight emission.
func (em *Emitter) RemoveAllListeners(names ...event.Name) {
	em.reg.clear(names...)
}

// Use appends a middleware to the pipeline. It applies to emissions
// started after the call.
func (em *Emitter) Use(mw Middleware) {
	if mw == nil {
		return
	}
	em.mwMu.Lock()
	defer em.mwMu.Unlock()
	em.middleware = append(em.middleware, mw)
}

// RemoveMiddleware removes the first middleware with the given name.
// It reports whether anything was removed. In-flight emissions keep
// the pipeline snapshot they started with.
func (em *Emitter) RemoveMiddleware(name string) bool {
	em.mwMu.Lock()
	defer em.mwMu.Unlock()

	for i, mw := range em.middleware {
		if mw.Name() == name {
			em.middleware = append(em.middleware[:i], em.middleware[i+1:]...)
			return true
		}
	}
	return false
}

// Stream returns a reactive stream of emissions for one event name.
// An unknown name yields a stream already terminated with
// ErrUnknownEvent; on a closed emitter the stream is already
// completed.
func (em *Emitter) Stream(name event.Name) *stream.Stream[event.Event] {
	if !event.Registered(name) {
		s := stream.New[event.Event](stream.WithClock(em.clk))
		s.Error(fmt.Errorf("%w: %q", ErrUnknownEvent, name))
		return s
	}
	return em.hub.stream(name)
}

// AllStream returns a reactive stream receiving every emission.
func (em *Emitter) AllStream() *stream.Stream[event.Event] {
	return em.hub.allStream()
}

// Emit constructs an event, runs it through the middleware pipeline,
// notifies listeners, and feeds attached streams.
//
// Listener failures never surface as Emit's error; they are collected
// on the Result. Only a pipeline (before-hook) failure returns a
// non-nil error, a *PipelineError, alongside a Result that records the
// same failure. Stream delivery and after-hooks happen after Emit
// returns and are never waited on.
func (em *Emitter) Emit(ctx context.Context, name event.Name, payload any, opts ...EmitOption) (Result, error) {
	if em.closed.Load() {
		return Result{}, ErrClosed
	}
	if !event.Registered(name) {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownEvent, name)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var ec emitConfig
	for _, opt := range opts {
		opt(&ec)
	}

	start := em.clk.Now()
	ev := em.build(name, payload, ec)
	em.totalEvents.Add(1)

	pipeline := em.snapshotMiddleware()
	if !ec.skipMiddleware {
		for _, mw := range pipeline {
			hook, ok := mw.(BeforeHook)
			if !ok {
				continue
			}
			next, err := em.safeBefore(ctx, hook, ev)
			if err != nil {
				perr := &PipelineError{Middleware: mw.Name(), Event: ev, Err: err}
				em.fireOnError(pipeline, perr, ev)
				return Result{
					EventID:     ev.ID,
					PipelineErr: perr,
					Duration:    em.clk.Since(start),
				}, perr
			}
			ev = next
		}
	}

	notified, listenerErrs := em.dispatch(ctx, ev)

	if !ec.skipMiddleware {
		em.runAfterHooks(ctx, pipeline, ev)
	}
	em.hub.offer(ev)

	return Result{
		EventID:           ev.ID,
		ListenersNotified: notified,
		Errors:            listenerErrs,
		Duration:          em.clk.Since(start),
		Success:           len(listenerErrs) == 0,
	}, nil
}

// Close tears the emitter down: middleware shutdown hooks run
// best-effort, outstanding after-hooks are drained (bounded by ctx),
// all streams complete, all listeners dispose, and counters reset.
// Idempotent; later calls return nil.
func (em *Emitter) Close(ctx context.Context) error {
	if !em.closed.CompareAndSwap(false, true) {
		return nil
	}

	var errs error
	for _, mw := range em.snapshotMiddleware() {
		hook, ok := mw.(ShutdownHook)
		if !ok {
			continue
		}
		if err := em.safeShutdown(ctx, hook, mw.Name()); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("middleware %q shutdown: %w", mw.Name(), err))
		}
	}

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		if r := em.bg.WaitAndRecover(); r != nil {
			em.log.Error("after-hook panicked during close", zap.Any("panic", r.Value))
		}
	}()
	select {
	case <-drained:
	case <-ctx.Done():
		errs = multierr.Append(errs, fmt.Errorf("draining after-hooks: %w", ctx.Err()))
	}

	em.hub.close()
	em.reg.clear()
	em.totalEvents.Store(0)

	return errs
}

// build constructs the immutable event for one emission.
func (em *Emitter) build(name event.Name, payload any, ec emitConfig) event.Event {
	opts := []event.Option{event.WithCreatedAt(em.stamp())}
	if ec.id != "" {
		opts = append(opts, event.WithID(ec.id))
	}
	if ec.source != "" {
		opts = append(opts, event.WithSource(ec.source))
	}
	if ec.correlationID != "" {
		opts = append(opts, event.WithCorrelationID(ec.correlationID))
	}
	for k, v := range ec.fields {
		opts = append(opts, event.WithField(k, v))
	}
	return event.New(name, payload, opts...)
}

// stamp returns a creation time that never moves backwards, so
// CreatedAt is monotonically non-decreasing in emission order.
func (em *Emitter) stamp() time.Time {
	em.stampMu.Lock()
	defer em.stampMu.Unlock()

	now := em.clk.Now()
	if now.Before(em.lastStamp) {
		now = em.lastStamp
	}
	em.lastStamp = now
	return now
}

// dispatch fans the event out to the listener snapshot. Listeners are
// started in priority order (ties preserve registration order) and run
// concurrently; one listener's failure or timeout never affects
// another.
func (em *Emitter) dispatch(ctx context.Context, ev event.Event) (int, []ListenerError) {
	subs := em.reg.snapshot(ev.Name)
	if len(subs) == 0 {
		return 0, nil
	}

	results := make([]dispatch.Result, len(subs))
	ran := make([]bool, len(subs))

	tasks := make([]dispatch.Task, len(subs))
	for i, sub := range subs {
		i, sub := i, sub
		tasks[i] = func(release func()) {
			if !sub.Active() {
				return
			}
			if sub.config.Predicate != nil && !em.safePredicate(sub, ev) {
				return
			}
			if !sub.claim() {
				return
			}
			ran[i] = true

			// release runs as the first statement of the listener
			// invocation: the next listener in priority order is held
			// back until this one's call has begun.
			results[i] = em.exec.ExecuteWithTimeout(ctx, func(ctx context.Context) error {
				release()
				return sub.listener.Handle(ctx, ev)
			}, sub.config.Timeout)

			if sub.exhausted() {
				sub.Unsubscribe()
			}
		}
	}
	dispatch.RunOrdered(tasks)

	notified := 0
	var errs []ListenerError
	now := em.clk.Now()
	for i, sub := range subs {
		if !ran[i] {
			continue
		}
		res := results[i]
		switch {
		case res.IsSuccess():
			notified++
		case res.TimedOut:
			errs = append(errs, ListenerError{
				ListenerID: sub.id,
				Event:      ev,
				Err:        &TimeoutError{ListenerID: sub.id, Timeout: sub.config.Timeout},
				At:         now,
			})
		case res.Panicked:
			errs = append(errs, ListenerError{
				ListenerID: sub.id,
				Event:      ev,
				Err:        &PanicError{ListenerID: sub.id, Value: res.PanicValue, Stack: res.PanicStack},
				At:         now,
			})
		default:
			errs = append(errs, ListenerError{
				ListenerID: sub.id,
				Event:      ev,
				Err:        res.Error,
				At:         now,
			})
		}
	}
	return notified, errs
}

// runAfterHooks runs the pipeline's After hooks on the supervised
// background group. Emit does not wait for them; their errors route to
// the OnError hooks.
func (em *Emitter) runAfterHooks(ctx context.Context, pipeline []Middleware, ev event.Event) {
	hasAfter := false
	for _, mw := range pipeline {
		if _, ok := mw.(AfterHook); ok {
			hasAfter = true
			break
		}
	}
	if !hasAfter {
		return
	}

	// The emission context may be cancelled as soon as Emit returns;
	// after-hooks keep its values but not its deadline.
	actx := context.WithoutCancel(ctx)
	em.bg.Go(func() {
		for _, mw := range pipeline {
			hook, ok := mw.(AfterHook)
			if !ok {
				continue
			}
			if err := em.safeAfter(actx, hook, mw.Name(), ev); err != nil {
				em.fireOnError(pipeline, err, ev)
			}
		}
	})
}

// fireOnError invokes every middleware's OnError hook best-effort.
// OnError failures are logged, never propagated.
func (em *Emitter) fireOnError(pipeline []Middleware, cause error, ev event.Event) {
	for _, mw := range pipeline {
		hook, ok := mw.(ErrorHook)
		if !ok {
			continue
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					em.log.Error("middleware OnError panicked",
						zap.String("middleware", mw.Name()),
						zap.String("event", string(ev.Name)),
						zap.Any("panic", r))
				}
			}()
			hook.OnError(cause, ev)
		}()
	}
}

// safeBefore runs a before hook, converting a panic into an error.
func (em *Emitter) safeBefore(ctx context.Context, hook BeforeHook, ev event.Event) (next event.Event, err error) {
	defer func() {
		if r := recover(); r != nil {
			next = ev
			err = fmt.Errorf("before hook panicked: %v", r)
		}
	}()
	return hook.Before(ctx, ev)
}

// safeAfter runs an after hook, converting a panic into an error.
func (em *Emitter) safeAfter(ctx context.Context, hook AfterHook, name string, ev event.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("after hook %q panicked: %v", name, r)
		}
	}()
	return hook.After(ctx, ev)
}

// safeShutdown runs a shutdown hook, converting a panic into an error.
func (em *Emitter) safeShutdown(ctx context.Context, hook ShutdownHook, name string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("shutdown hook %q panicked: %v", name, r)
		}
	}()
	return hook.Shutdown(ctx)
}

// safePredicate evaluates a subscription predicate; a panicking
// predicate is treated as false and logged.
func (em *Emitter) safePredicate(sub *subscription, ev event.Event) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			em.log.Error("subscription predicate panicked",
				zap.String("subscription", sub.id),
				zap.String("event", string(ev.Name)),
				zap.Any("panic", r))
			ok = false
		}
	}()
	return sub.config.Predicate(ev)
}

// snapshotMiddleware copies the pipeline so an in-flight emission is
// insulated from concurrent Use/RemoveMiddleware calls.
func (em *Emitter) snapshotMiddleware() []Middleware {
	em.mwMu.RLock()
	defer em.mwMu.RUnlock()

	if len(em.middleware) == 0 {
		return nil
	}
	out := make([]Middleware, len(em.middleware))
	copy(out, em.middleware)
	return out
}
