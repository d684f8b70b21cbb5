package emitter

import "time"

// Result reports the outcome of one emission. A caller inspecting only
// the Result (ignoring Emit's error return) can fully reconstruct what
// failed: Success is true iff the pipeline accepted the event and every
// notified listener completed cleanly.
type Result struct {
	// EventID is the ID of the emitted event.
	EventID string

	// ListenersNotified is the count of listeners that completed
	// without error, timeout, or panic. Predicate-skipped listeners
	// are not counted either way.
	ListenersNotified int

	// Errors holds one entry per failed listener.
	Errors []ListenerError

	// PipelineErr is set when a before-hook aborted the dispatch; no
	// listener ran in that case.
	PipelineErr error

	// Duration is the elapsed time of the emission, from construction
	// through the listener join. After-hooks and stream delivery are
	// not included; they run after Emit returns.
	Duration time.Duration

	// Success is true iff PipelineErr is nil and Errors is empty.
	Success bool
}
