// Package format renders derived values of manifests for display.
package format
