package emitter

import (
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/dshills/pulse/event"
	"github.com/dshills/pulse/stream"
)

// hub fans emitted events out to reactive streams. Delivery runs on a
// single pump goroutine so every stream sees emissions in FIFO order,
// and the emit path never blocks on stream consumers: a full queue
// drops the event for streams (listeners are unaffected), counts it,
// and logs it.
type hub struct {
	log *zap.Logger
	clk clock.Clock

	mu     sync.Mutex
	queue  chan event.Event
	closed bool
	byName map[event.Name][]*stream.Stream[event.Event]
	all    []*stream.Stream[event.Event]

	drops atomic.Uint64
	done  chan struct{}
}

func newHub(buffer int, clk clock.Clock, log *zap.Logger) *hub {
	h := &hub{
		log:    log,
		clk:    clk,
		queue:  make(chan event.Event, buffer),
		byName: make(map[event.Name][]*stream.Stream[event.Event]),
		done:   make(chan struct{}),
	}
	go h.pump()
	return h
}

// offer enqueues an event for stream delivery without blocking.
func (h *hub) offer(ev event.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	select {
	case h.queue <- ev:
	default:
		dropped := h.drops.Add(1)
		if dropped%100 == 1 {
			h.log.Warn("stream queue full, dropping event",
				zap.String("event", string(ev.Name)),
				zap.Uint64("dropped", dropped))
		}
	}
}

// pump delivers queued events to attached streams in order.
func (h *hub) pump() {
	defer close(h.done)
	for ev := range h.queue {
		for _, s := range h.sinksFor(ev.Name) {
			s.Next(ev)
		}
	}
}

// sinksFor snapshots the streams interested in an event name, pruning
// streams that have reached a terminal state.
func (h *hub) sinksFor(name event.Name) []*stream.Stream[event.Event] {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.byName[name] = prune(h.byName[name])
	if len(h.byName[name]) == 0 {
		delete(h.byName, name)
	}
	h.all = prune(h.all)

	out := make([]*stream.Stream[event.Event], 0, len(h.byName[name])+len(h.all))
	out = append(out, h.byName[name]...)
	out = append(out, h.all...)
	return out
}

func prune(sinks []*stream.Stream[event.Event]) []*stream.Stream[event.Event] {
	live := sinks[:0]
	for _, s := range sinks {
		if !s.Terminal() {
			live = append(live, s)
		}
	}
	return live
}

// stream creates and attaches a stream for one event name.
func (h *hub) stream(name event.Name) *stream.Stream[event.Event] {
	s := stream.New[event.Event](stream.WithClock(h.clk))

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		s.Complete()
		return s
	}
	h.byName[name] = append(h.byName[name], s)
	return s
}

// allStream creates and attaches a stream receiving every event.
func (h *hub) allStream() *stream.Stream[event.Event] {
	s := stream.New[event.Event](stream.WithClock(h.clk))

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		s.Complete()
		return s
	}
	h.all = append(h.all, s)
	return s
}

// sinkCount returns the number of attached streams.
func (h *hub) sinkCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := len(h.all)
	for _, sinks := range h.byName {
		n += len(sinks)
	}
	return n
}

// close drains the queue, completes every attached stream, and stops
// the pump. Idempotent.
func (h *hub) close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	close(h.queue)
	h.mu.Unlock()

	// Let the pump finish delivering whatever was already queued.
	<-h.done

	h.mu.Lock()
	var sinks []*stream.Stream[event.Event]
	for _, bucket := range h.byName {
		sinks = append(sinks, bucket...)
	}
	sinks = append(sinks, h.all...)
	h.byName = make(map[event.Name][]*stream.Stream[event.Event])
	h.all = nil
	h.mu.Unlock()

	for _, s := range sinks {
		s.Complete()
	}
}
