// Package config defines the alert monitor settings and provides helpers
// to load, validate and save them in YAML format, plus a Watcher that
// reloads the file when it changes on disk.
package config
