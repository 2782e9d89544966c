// Package status exports errors produced by the core package.
package status

import (
	"github.com/oneconcern/pkgreg/pkg/errors"
)

var (
	// ErrInterrupted signals that a manifest fetch has been interrupted by its caller
	ErrInterrupted = errors.New("manifest fetch interrupted")

	// ErrNotFound indicates a package version or a file was not found
	ErrNotFound = errors.New("not found")

	// ErrNoComparisonVersion indicates that no version is available to compare against
	ErrNoComparisonVersion = errors.New("no version to compare against")

	// ErrInvalidVersion indicates a version number which cannot exist
	ErrInvalidVersion = errors.New("invalid package version")
)
