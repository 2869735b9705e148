// Package platform holds OS-facing helpers.
package platform
