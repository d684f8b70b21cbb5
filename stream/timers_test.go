package stream

import (
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
)

func TestDebounce(t *testing.T) {
	mock := clock.NewMock()
	s := New[int](WithClock(mock))
	got, completes, _ := collectInts(s.Debounce(50 * time.Millisecond))

	// Emissions at t=0, t=10, t=20, then silence.
	s.Next(1)
	mock.Add(10 * time.Millisecond)
	s.Next(2)
	mock.Add(10 * time.Millisecond)
	s.Next(3)

	mock.Add(49 * time.Millisecond)
	require.Empty(t, *got, "quiet period not over at t=69")

	mock.Add(1 * time.Millisecond)
	require.Equal(t, []int{3}, *got, "exactly the last value, at t=70")

	mock.Add(time.Second)
	require.Equal(t, []int{3}, *got, "no further emissions")
	require.Equal(t, 0, *completes)
}

func TestDebounce_TimerResetsOnEachNext(t *testing.T) {
	mock := clock.NewMock()
	s := New[int](WithClock(mock))
	got, _, _ := collectInts(s.Debounce(50 * time.Millisecond))

	s.Next(1)
	mock.Add(40 * time.Millisecond)
	s.Next(2) // resets the quiet period
	mock.Add(40 * time.Millisecond)
	require.Empty(t, *got)

	mock.Add(10 * time.Millisecond)
	require.Equal(t, []int{2}, *got)
}

func TestDebounce_FlushesPendingOnComplete(t *testing.T) {
	mock := clock.NewMock()
	s := New[int](WithClock(mock))
	got, completes, _ := collectInts(s.Debounce(50 * time.Millisecond))

	s.Next(7)
	s.Complete()

	require.Equal(t, []int{7}, *got, "pending value flushes before completion")
	require.Equal(t, 1, *completes)
}

func TestDebounce_ErrorDropsPending(t *testing.T) {
	mock := clock.NewMock()
	s := New[int](WithClock(mock))
	got, _, err := collectInts(s.Debounce(50 * time.Millisecond))

	s.Next(7)
	s.Error(errors.New("upstream failed"))

	require.Empty(t, *got)
	require.Error(t, *err)
}

func TestThrottle(t *testing.T) {
	mock := clock.NewMock()
	s := New[int](WithClock(mock))
	got, _, _ := collectInts(s.Throttle(100 * time.Millisecond))

	s.Next(1) // first value passes immediately
	require.Equal(t, []int{1}, *got)

	mock.Add(10 * time.Millisecond)
	s.Next(2) // inside the window: coalesced
	mock.Add(10 * time.Millisecond)
	s.Next(3) // latest wins
	require.Equal(t, []int{1}, *got)

	mock.Add(80 * time.Millisecond) // window boundary at t=100
	require.Equal(t, []int{1, 3}, *got, "one trailing emission with the latest value")
}

func TestThrottle_EmitsImmediatelyAfterQuietWindow(t *testing.T) {
	mock := clock.NewMock()
	s := New[int](WithClock(mock))
	got, _, _ := collectInts(s.Throttle(100 * time.Millisecond))

	s.Next(1)
	mock.Add(150 * time.Millisecond)
	s.Next(2) // window has long elapsed: immediate

	require.Equal(t, []int{1, 2}, *got)
}

func TestThrottle_FlushesPendingOnComplete(t *testing.T) {
	mock := clock.NewMock()
	s := New[int](WithClock(mock))
	got, completes, _ := collectInts(s.Throttle(100 * time.Millisecond))

	s.Next(1)
	mock.Add(10 * time.Millisecond)
	s.Next(2)
	s.Complete()

	require.Equal(t, []int{1, 2}, *got, "pending trailing value flushes on complete")
	require.Equal(t, 1, *completes)
}

func TestBufferTime(t *testing.T) {
	mock := clock.NewMock()
	s := New[int](WithClock(mock))
	out := s.BufferTime(100 * time.Millisecond)

	var got [][]int
	completes := 0
	out.Subscribe(Observer[[]int]{
		OnNext:     func(v []int) { got = append(got, v) },
		OnComplete: func() { completes++ },
	})

	s.Next(1)
	s.Next(2)
	mock.Add(100 * time.Millisecond)
	require.Equal(t, [][]int{{1, 2}}, got)

	mock.Add(100 * time.Millisecond)
	require.Equal(t, [][]int{{1, 2}}, got, "empty intervals flush nothing")

	s.Next(3)
	s.Complete()
	require.Equal(t, [][]int{{1, 2}, {3}}, got, "partial batch flushes on complete")
	require.Equal(t, 1, completes)
}

func TestCombineWith(t *testing.T) {
	a := New[int]()
	b := New[int]()
	got, completes, _ := collectInts(a.CombineWith(b))

	a.Next(1)
	b.Next(2)
	a.Next(3)

	require.Equal(t, []int{1, 2, 3}, *got)

	a.Complete()
	require.Equal(t, 0, *completes, "downstream completes only after both upstreams")

	b.Complete()
	require.Equal(t, 1, *completes)
}

func TestCombineWith_ErrorPropagatesImmediately(t *testing.T) {
	a := New[int]()
	b := New[int]()
	out := a.CombineWith(b)
	_, _, err := collectInts(out)

	wantErr := errors.New("upstream a failed")
	a.Error(wantErr)

	require.Equal(t, wantErr, *err)
	require.Equal(t, StateErrored, out.State())

	b.Next(1) // must be dropped by the terminal downstream
}
