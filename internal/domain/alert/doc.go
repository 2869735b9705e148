// Package alert contains the core domain types of the alert monitor.
//
// It defines Level (normal or alert), the colour each level paints on the
// indicator, the threshold classification and Reading, one classified
// sample produced by the background monitor.
package alert
