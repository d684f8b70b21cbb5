package stream

import "errors"

// Sentinel errors for streams.
var (
	// ErrNoValue is returned by First when the stream completes
	// before emitting a value.
	ErrNoValue = errors.New("stream completed without emitting")
)
