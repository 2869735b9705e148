// Package viewmodel holds the state shared between the window and the
// background monitor.
//
// MainWindow is an observable property bag. It is safe to read from any
// goroutine, but it is written only from the UI context (the dispatcher
// queue consumer). Property-changed listeners run on the writer's
// goroutine, which is why the window can touch widgets from them.
package viewmodel
