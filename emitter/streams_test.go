package emitter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dshills/pulse/event"
	"github.com/dshills/pulse/event/events"
	"github.com/dshills/pulse/stream"
)

// waitStream polls until cond holds or the deadline passes. Stream
// delivery runs on the hub's pump goroutine, so tests wait rather than
// assert immediately.
func waitStream(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached within 2s")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestEmitter_StreamDelivery(t *testing.T) {
	em := New()
	defer em.Close(context.Background())

	s := em.Stream(testPing.Name())

	var (
		mu  sync.Mutex
		got []any
	)
	s.Subscribe(stream.Observer[event.Event]{
		OnNext: func(ev event.Event) {
			mu.Lock()
			got = append(got, ev.Payload)
			mu.Unlock()
		},
	})

	for _, p := range []string{"a", "b", "c"} {
		if _, err := em.Emit(context.Background(), testPing.Name(), p); err != nil {
			t.Fatalf("Emit(%s) error = %v", p, err)
		}
	}

	waitStream(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 3
	})

	mu.Lock()
	defer mu.Unlock()
	for i, want := range []any{"a", "b", "c"} {
		if got[i] != want {
			t.Errorf("got[%d] = %v, want %v (delivery must be in emission order)", i, got[i], want)
		}
	}
}

func TestEmitter_StreamFiltersByName(t *testing.T) {
	em := New()
	defer em.Close(context.Background())

	s := em.Stream(testPing.Name())
	var (
		mu  sync.Mutex
		got []event.Name
	)
	s.Subscribe(stream.Observer[event.Event]{
		OnNext: func(ev event.Event) {
			mu.Lock()
			got = append(got, ev.Name)
			mu.Unlock()
		},
	})

	em.Emit(context.Background(), testPong.Name(), "other")
	em.Emit(context.Background(), testPing.Name(), "mine")

	waitStream(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	})

	mu.Lock()
	defer mu.Unlock()
	if got[0] != testPing.Name() {
		t.Errorf("stream received %v, want only %v", got[0], testPing.Name())
	}
}

func TestEmitter_AllStream(t *testing.T) {
	em := New()
	defer em.Close(context.Background())

	s := em.AllStream()
	var (
		mu  sync.Mutex
		got []event.Name
	)
	s.Subscribe(stream.Observer[event.Event]{
		OnNext: func(ev event.Event) {
			mu.Lock()
			got = append(got, ev.Name)
			mu.Unlock()
		},
	})

	em.Emit(context.Background(), testPing.Name(), "a")
	em.Emit(context.Background(), testPong.Name(), "b")

	waitStream(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	})

	mu.Lock()
	defer mu.Unlock()
	if got[0] != testPing.Name() || got[1] != testPong.Name() {
		t.Errorf("all-stream received %v, want [%v %v]", got, testPing.Name(), testPong.Name())
	}
}

func TestEmitter_StreamUnknownName(t *testing.T) {
	em := New()
	defer em.Close(context.Background())

	s := em.Stream("no:such:event")
	if s.State() != stream.StateErrored {
		t.Fatalf("State() = %v, want StateErrored", s.State())
	}
	if !errors.Is(s.Err(), ErrUnknownEvent) {
		t.Errorf("Err() = %v, want ErrUnknownEvent", s.Err())
	}
}

func TestEmitter_StreamOperatorPipeline(t *testing.T) {
	em := New()
	defer em.Close(context.Background())

	// High-value order watcher: first order above 100 only.
	matches := em.Stream(events.OrderCreated.Name()).
		Filter(func(ev event.Event) bool {
			p, ok := event.PayloadOf[events.OrderCreatedPayload](ev)
			return ok && p.Amount > 100
		}).
		Take(1)

	var (
		mu        sync.Mutex
		got       []float64
		completes int
	)
	matches.Subscribe(stream.Observer[event.Event]{
		OnNext: func(ev event.Event) {
			p, _ := event.PayloadOf[events.OrderCreatedPayload](ev)
			mu.Lock()
			got = append(got, p.Amount)
			mu.Unlock()
		},
		OnComplete: func() {
			mu.Lock()
			completes++
			mu.Unlock()
		},
	})

	for _, amount := range []float64{50, 150, 200} {
		if _, err := Emit(context.Background(), em, events.OrderCreated, events.OrderCreatedPayload{
			OrderID:  "o-1",
			Amount:   amount,
			Currency: "USD",
		}); err != nil {
			t.Fatalf("Emit(%v) error = %v", amount, err)
		}
	}

	waitStream(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return completes == 1
	})

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != 150 {
		t.Errorf("matches = %v, want [150]", got)
	}
	if completes != 1 {
		t.Errorf("completes = %d, want 1", completes)
	}
}

func TestEmitter_CloseCompletesStreams(t *testing.T) {
	em := New()

	s := em.Stream(testPing.Name())
	completed := false
	s.Subscribe(stream.Observer[event.Event]{
		OnComplete: func() { completed = true },
	})

	if err := em.Close(context.Background()); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !completed {
		t.Error("stream not completed by Close")
	}
	if s.State() != stream.StateCompleted {
		t.Errorf("State() = %v, want StateCompleted", s.State())
	}
}

func TestEmitter_StreamAfterClose(t *testing.T) {
	em := New()
	if err := em.Close(context.Background()); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	s := em.Stream(testPing.Name())
	if s.State() != stream.StateCompleted {
		t.Errorf("Stream() on closed emitter: State() = %v, want StateCompleted", s.State())
	}
	all := em.AllStream()
	if all.State() != stream.StateCompleted {
		t.Errorf("AllStream() on closed emitter: State() = %v, want StateCompleted", all.State())
	}
}

func TestEmitter_TerminalStreamsPruned(t *testing.T) {
	em := New()
	defer em.Close(context.Background())

	s := em.Stream(testPing.Name())
	s.Complete()

	if _, err := em.Emit(context.Background(), testPing.Name(), "x"); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	waitStream(t, func() bool {
		return em.hub.sinkCount() == 0
	})
}
