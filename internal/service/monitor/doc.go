// Package monitor implements the background task that samples a random
// source on a fixed interval and publishes classified readings.
package monitor
