// Package dispatcher marshals alert readings onto the UI context.
//
// The background monitor publishes readings into a Queue; exactly one
// consumer drains the queue and hands every reading to an Executor that
// runs the apply function on the goroutine owning UI state.
package dispatcher
