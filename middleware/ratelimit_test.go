package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/dshills/pulse/event"
)

var (
	rlTestFast = event.Define[string]("middleware.test:fast")
	rlTestSlow = event.Define[string]("middleware.test:slow")
)

func TestRateLimit_AdmitsWithinBudget(t *testing.T) {
	mw := NewRateLimit(3, time.Second)
	ev := event.New(rlTestFast.Name(), "x")

	for i := 0; i < 3; i++ {
		_, err := mw.Before(context.Background(), ev)
		require.NoError(t, err, "emission %d within budget", i)
	}

	_, err := mw.Before(context.Background(), ev)
	require.ErrorIs(t, err, ErrRateLimited)

	var rlerr *RateLimitError
	require.ErrorAs(t, err, &rlerr)
	require.Equal(t, string(rlTestFast.Name()), rlerr.Key)
	require.Equal(t, 3, rlerr.Limit)
}

func TestRateLimit_WindowSlides(t *testing.T) {
	mock := clock.NewMock()
	mw := NewRateLimit(2, time.Second, WithClock(mock))
	ev := event.New(rlTestFast.Name(), "x")

	_, err := mw.Before(context.Background(), ev)
	require.NoError(t, err)
	mock.Add(600 * time.Millisecond)
	_, err = mw.Before(context.Background(), ev)
	require.NoError(t, err)

	_, err = mw.Before(context.Background(), ev)
	require.ErrorIs(t, err, ErrRateLimited)

	// At t=1.1s the first hit has left the window; one slot frees up.
	mock.Add(500 * time.Millisecond)
	_, err = mw.Before(context.Background(), ev)
	require.NoError(t, err)
	_, err = mw.Before(context.Background(), ev)
	require.ErrorIs(t, err, ErrRateLimited)
}

func TestRateLimit_KeysAreIndependent(t *testing.T) {
	mw := NewRateLimit(1, time.Second)

	_, err := mw.Before(context.Background(), event.New(rlTestFast.Name(), "x"))
	require.NoError(t, err)
	_, err = mw.Before(context.Background(), event.New(rlTestFast.Name(), "x"))
	require.ErrorIs(t, err, ErrRateLimited)

	// A different event name draws from its own budget.
	_, err = mw.Before(context.Background(), event.New(rlTestSlow.Name(), "x"))
	require.NoError(t, err)
}

func TestRateLimit_CustomKeyFunc(t *testing.T) {
	mw := NewRateLimit(1, time.Second, WithKeyFunc(func(ev event.Event) string {
		return ev.Meta.Source
	}))

	_, err := mw.Before(context.Background(), event.New(rlTestFast.Name(), "x", event.WithSource("api")))
	require.NoError(t, err)

	// Same name, different source: separate bucket.
	_, err = mw.Before(context.Background(), event.New(rlTestFast.Name(), "x", event.WithSource("worker")))
	require.NoError(t, err)

	_, err = mw.Before(context.Background(), event.New(rlTestSlow.Name(), "x", event.WithSource("api")))
	require.ErrorIs(t, err, ErrRateLimited, "buckets key on source, not name")
}
