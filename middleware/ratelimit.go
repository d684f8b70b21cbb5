package middleware

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dshills/pulse/event"
)

// ErrRateLimited marks an emission rejected by the rate limiter.
// Match with errors.Is against the PipelineError Emit returns.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimitError reports which key exceeded which window.
type RateLimitError struct {
	// Key is the limited bucket key.
	Key string

	// Limit is the permitted emissions per window.
	Limit int

	// Window is the sliding window length.
	Window time.Duration
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %q: %d per %v", e.Key, e.Limit, e.Window)
}

// Is allows errors.Is to match RateLimitError with ErrRateLimited.
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// KeyFunc derives the rate-limit bucket key from an event. The
// default keys by event name.
type KeyFunc func(ev event.Event) string

// RateLimit rejects emissions that exceed a per-key budget within a
// sliding window. Window state is private to the instance and guarded
// by a mutex, so one instance may be shared across emitters.
type RateLimit struct {
	limit  int
	window time.Duration
	keyFn  KeyFunc
	clk    clock.Clock

	mu   sync.Mutex
	hits map[string][]time.Time
}

// RateLimitOption configures a RateLimit.
type RateLimitOption func(*RateLimit)

// WithKeyFunc sets the bucket key derivation.
func WithKeyFunc(fn KeyFunc) RateLimitOption {
	return func(m *RateLimit) {
		if fn != nil {
			m.keyFn = fn
		}
	}
}

// WithClock sets the clock used for the sliding window.
func WithClock(clk clock.Clock) RateLimitOption {
	return func(m *RateLimit) {
		if clk != nil {
			m.clk = clk
		}
	}
}

// NewRateLimit creates a rate limiter permitting limit emissions per
// key within each sliding window.
func NewRateLimit(limit int, window time.Duration, opts ...RateLimitOption) *RateLimit {
	m := &RateLimit{
		limit:  limit,
		window: window,
		keyFn:  func(ev event.Event) string { return string(ev.Name) },
		clk:    clock.New(),
		hits:   make(map[string][]time.Time),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name identifies the middleware.
func (m *RateLimit) Name() string {
	return "ratelimit"
}

// Before admits the event if its key has budget left in the current
// window, otherwise rejects with a RateLimitError.
func (m *RateLimit) Before(_ context.Context, ev event.Event) (event.Event, error) {
	key := m.keyFn(ev)
	now := m.clk.Now()
	cutoff := now.Add(-m.window)

	m.mu.Lock()
	defer m.mu.Unlock()

	hits := m.hits[key]
	live := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			live = append(live, t)
		}
	}

	if len(live) >= m.limit {
		m.hits[key] = live
		return ev, &RateLimitError{Key: key, Limit: m.limit, Window: m.window}
	}

	m.hits[key] = append(live, now)
	return ev, nil
}
