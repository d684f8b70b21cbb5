package emitter

import (
	"time"

	"github.com/dshills/pulse/emitter/dispatch"
	"github.com/dshills/pulse/event"
)

// Rough per-object bookkeeping sizes used for the memory estimate.
// These cover the bus's own records (subscription structs, bucket
// slots, stream nodes), not listener closures or payloads.
const (
	baseOverhead     = 2048
	listenerOverhead = 256
	streamOverhead   = 512
)

// Metrics is a point-in-time snapshot of emitter activity.
type Metrics struct {
	// TotalEvents is the number of emissions since creation (or the
	// last Close).
	TotalEvents uint64

	// ListenerCounts is the current listener count per event name.
	ListenerCounts map[event.Name]int

	// Uptime is the time since the emitter was created.
	Uptime time.Duration

	// EventsPerSecond is TotalEvents averaged over Uptime.
	EventsPerSecond float64

	// MemoryEstimate is a rough byte estimate of the bus's own
	// bookkeeping. It does not account for payloads or closures.
	MemoryEstimate uint64

	// StreamDrops is the number of events dropped from the stream
	// delivery queue because it was full.
	StreamDrops uint64

	// Dispatch breaks listener invocations down by outcome.
	Dispatch dispatch.Stats
}

// Metrics returns a snapshot of emitter activity.
func (em *Emitter) Metrics() Metrics {
	uptime := em.clk.Since(em.started)
	total := em.totalEvents.Load()

	var eps float64
	if secs := uptime.Seconds(); secs > 0 {
		eps = float64(total) / secs
	}

	listeners := em.reg.total()
	streams := em.hub.sinkCount()

	return Metrics{
		TotalEvents:     total,
		ListenerCounts:  em.reg.counts(),
		Uptime:          uptime,
		EventsPerSecond: eps,
		MemoryEstimate:  uint64(baseOverhead + listeners*listenerOverhead + streams*streamOverhead),
		StreamDrops:     em.hub.drops.Load(),
		Dispatch:        em.exec.Stats(),
	}
}
