// Package version exposes build metadata for alert-monitor.
//
// Version, Commit and BuildTime are injected at build time via Go ldflags.
package version
