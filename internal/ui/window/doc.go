// Package window is the fyne main window: a coloured indicator behind a
// greeting, and a status line with the last sample.
package window
