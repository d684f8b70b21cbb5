package events

import "github.com/dshills/pulse/event"

// System event definitions.
var (
	// SystemError is emitted when a component reports a fault.
	SystemError = event.Define[SystemErrorPayload]("system:error")

	// SystemReady is emitted once startup completes.
	SystemReady = event.Define[SystemReadyPayload]("system:ready")
)

// SystemErrorPayload is the payload for system:error.
type SystemErrorPayload struct {
	// Component names the component that faulted.
	Component string

	// Message describes the fault.
	Message string

	// Fatal indicates the component cannot continue.
	Fatal bool
}

// SystemReadyPayload is the payload for system:ready.
type SystemReadyPayload struct {
	// Components lists the components that came up.
	Components []string
}
