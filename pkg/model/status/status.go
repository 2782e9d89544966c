// Package status exports errors produced by the model package.
package status

import "github.com/oneconcern/pkgreg/pkg/errors"

var (
	// ErrInvalidManifest indicates a manifest which does not pass validation
	ErrInvalidManifest = errors.New("invalid manifest")

	// ErrInvalidPackageName indicates a package name with forbidden characters
	ErrInvalidPackageName = errors.New("invalid package name")

	// ErrLimitExceeded indicates a manifest which exceeds the configured package limits
	ErrLimitExceeded = errors.New("manifest exceeds limits")

	// ErrInvalidObjects indicates a malformed objects stream
	ErrInvalidObjects = errors.New("invalid objects stream")
)
