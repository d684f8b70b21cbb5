// Package dispatch is the execution engine for listener notification.
//
// The Executor runs a single handler with panic recovery, timing, and
// an optional timeout raced against the handler body. RunOrdered fans
// a slice of tasks out concurrently while guaranteeing that task i+1
// is not started before task i has begun executing, which is how the
// emitter turns listener priority into a start-order guarantee without
// serializing execution.
//
// Handlers are isolated from each other: a panic, error, or timeout in
// one never affects another, and every outcome is reported in a
// Result.
package dispatch
