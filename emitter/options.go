package emitter

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// Option configures an Emitter.
type Option func(*config)

// config contains emitter configuration.
type config struct {
	// logger receives swallowed failures (onError hooks that fail,
	// stream drops). Nop by default.
	logger *zap.Logger

	// clk drives timestamps, listener timeouts, and metrics. Tests
	// inject clock.NewMock.
	clk clock.Clock

	// maxListeners caps listeners per event name; zero = unlimited.
	maxListeners int

	// streamBuffer is the size of the stream delivery queue.
	streamBuffer int
}

func defaultConfig() config {
	return config{
		logger:       zap.NewNop(),
		clk:          clock.New(),
		maxListeners: 0,
		streamBuffer: 1024,
	}
}

// WithLogger sets the structured logger. The emitter never lets an
// error vanish silently: failures it must swallow (OnError hook
// failures, stream queue drops) are logged here.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock sets the clock used for event timestamps, listener
// timeouts, and throughput metrics.
func WithClock(clk clock.Clock) Option {
	return func(c *config) {
		if clk != nil {
			c.clk = clk
		}
	}
}

// WithMaxListeners caps the number of listeners per event name.
// Registration beyond the cap fails with ErrTooManyListeners.
func WithMaxListeners(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxListeners = n
		}
	}
}

// WithStreamBuffer sets the stream delivery queue size. When the queue
// is full the emission is not delayed; the event is dropped for
// streams (listeners are unaffected), counted, and logged.
func WithStreamBuffer(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.streamBuffer = n
		}
	}
}

// EmitOption configures a single emission.
type EmitOption func(*emitConfig)

// emitConfig contains per-emission settings.
type emitConfig struct {
	id             string
	source         string
	correlationID  string
	fields         map[string]string
	skipMiddleware bool
}

// WithEventID supplies an explicit event ID for this emission.
func WithEventID(id string) EmitOption {
	return func(c *emitConfig) {
		c.id = id
	}
}

// WithSource names the emitting component.
func WithSource(source string) EmitOption {
	return func(c *emitConfig) {
		c.source = source
	}
}

// WithCorrelationID links this emission to related events.
func WithCorrelationID(id string) EmitOption {
	return func(c *emitConfig) {
		c.correlationID = id
	}
}

// WithMetaField attaches a metadata field to the event.
func WithMetaField(key, value string) EmitOption {
	return func(c *emitConfig) {
		if c.fields == nil {
			c.fields = make(map[string]string)
		}
		c.fields[key] = value
	}
}

// WithSkipMiddleware bypasses the middleware pipeline for this
// emission. Listeners and streams are still notified.
func WithSkipMiddleware() EmitOption {
	return func(c *emitConfig) {
		c.skipMiddleware = true
	}
}
