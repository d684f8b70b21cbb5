package dispatch

import (
	"context"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
)

// Handler is the unit of work the executor runs. It mirrors the
// emitter's listener shape to avoid a circular import.
type Handler func(ctx context.Context) error

// Result represents the outcome of a handler execution.
type Result struct {
	// Success is true if the handler completed without error, panic,
	// or timeout.
	Success bool

	// Error is the error returned by the handler, if any.
	Error error

	// Panicked is true if the handler panicked.
	Panicked bool

	// PanicValue is the value passed to panic(), if Panicked is true.
	PanicValue any

	// PanicStack is the stack trace at the point of panic.
	PanicStack []byte

	// TimedOut is true if the handler exceeded its timeout. The
	// handler goroutine may still be running; its eventual outcome is
	// discarded.
	TimedOut bool

	// Duration is how long the execution took, as observed by the
	// executor's clock for timed runs.
	Duration time.Duration

	// Skipped is true if the handler was not executed (context already
	// cancelled).
	Skipped bool
}

// IsSuccess returns true if the result indicates successful execution.
func (r Result) IsSuccess() bool {
	return r.Success && !r.Panicked && !r.TimedOut && r.Error == nil
}

// Stats is a point-in-time snapshot of executor activity.
type Stats struct {
	// Executed counts every handler run attempt, including skips.
	Executed uint64

	// Succeeded counts handlers that completed without error.
	Succeeded uint64

	// Failed counts handlers that returned an error.
	Failed uint64

	// Panicked counts handlers that panicked.
	Panicked uint64

	// TimedOut counts handlers that lost the timeout race.
	TimedOut uint64

	// Skipped counts handlers not run because the context was already
	// cancelled.
	Skipped uint64
}

// Executor runs handlers with panic recovery and timing.
type Executor struct {
	clk clock.Clock

	executed  atomic.Uint64
	succeeded atomic.Uint64
	failed    atomic.Uint64
	panicked  atomic.Uint64
	timedOut  atomic.Uint64
	skipped   atomic.Uint64
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithClock sets the clock used for timeouts and timing. Tests inject
// clock.NewMock to drive timeouts deterministically.
func WithClock(clk clock.Clock) ExecutorOption {
	return func(e *Executor) {
		if clk != nil {
			e.clk = clk
		}
	}
}

// NewExecutor creates an executor.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{clk: clock.New()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs a handler synchronously, recovering panics and timing
// the call.
func (e *Executor) Execute(ctx context.Context, h Handler) Result {
	select {
	case <-ctx.Done():
		return e.record(Result{Error: ctx.Err(), Skipped: true})
	default:
	}
	return e.record(e.run(ctx, h))
}

// ExecuteWithTimeout races the handler body against a timer. On
// timeout the result records TimedOut and the handler's eventual
// outcome is discarded. A timeout of zero or less means no timeout.
//
// Unlike context-based timeouts, the race does not require the handler
// to observe cancellation: a stuck handler loses the race but cannot
// stall the emission. The context passed to the handler is still
// cancelled at the timeout so cooperative handlers can stop early.
func (e *Executor) ExecuteWithTimeout(ctx context.Context, h Handler, timeout time.Duration) Result {
	if timeout <= 0 {
		return e.Execute(ctx, h)
	}

	select {
	case <-ctx.Done():
		return e.record(Result{Error: ctx.Err(), Skipped: true})
	default:
	}

	hctx, cancel := context.WithCancel(ctx)
	defer cancel()

	start := e.clk.Now()
	done := make(chan Result, 1)
	go func() {
		done <- e.run(hctx, h)
	}()

	timer := e.clk.Timer(timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		return e.record(res)
	case <-timer.C:
		return e.record(Result{TimedOut: true, Duration: e.clk.Since(start)})
	}
}

// Stats returns a snapshot of executor activity.
func (e *Executor) Stats() Stats {
	return Stats{
		Executed:  e.executed.Load(),
		Succeeded: e.succeeded.Load(),
		Failed:    e.failed.Load(),
		Panicked:  e.panicked.Load(),
		TimedOut:  e.timedOut.Load(),
		Skipped:   e.skipped.Load(),
	}
}

// record tallies a result into the executor's counters. Each call is
// counted exactly once, against its recorded outcome; a timed-out
// handler's eventual result is never re-counted.
func (e *Executor) record(res Result) Result {
	e.executed.Add(1)
	switch {
	case res.Skipped:
		e.skipped.Add(1)
	case res.TimedOut:
		e.timedOut.Add(1)
	case res.Panicked:
		e.panicked.Add(1)
	case res.Error != nil:
		e.failed.Add(1)
	default:
		e.succeeded.Add(1)
	}
	return res
}

// run executes the handler with panic recovery.
func (e *Executor) run(ctx context.Context, h Handler) (result Result) {
	start := time.Now()

	defer func() {
		result.Duration = time.Since(start)
		if r := recover(); r != nil {
			result.Success = false
			result.Panicked = true
			result.PanicValue = r
			result.PanicStack = debug.Stack()
		}
	}()

	if err := h(ctx); err != nil {
		result.Error = err
		return result
	}
	result.Success = true
	return result
}
