// Package desktop wires the alert monitor together and runs it, either
// with the fyne main window or headless.
package desktop
