// Package host runs the long-lived services of the application.
//
// A Host moves strictly forward through not started, running, stopping
// and stopped. Start launches every registered Service on its own
// goroutine; Stop cancels them and waits, bounded by the caller's
// context, until all of them have returned.
package host
