// Package status exports errors produced by the registry package.
package status

import "github.com/oneconcern/pkgreg/pkg/errors"

var (
	// ErrDuplicatePackage is returned when trying to publish a package
	// with the same content as an earlier version of this package
	ErrDuplicatePackage = errors.New("duplicate package")

	// ErrManifestExists indicates an attempt to overwrite a published version
	ErrManifestExists = errors.New("package version already exists")

	// ErrMissingObjects indicates a manifest referring to objects which are not in the store
	ErrMissingObjects = errors.New("manifest refers to missing objects")

	// ErrCorruptedObject indicates an object which content does not match its hash or size
	ErrCorruptedObject = errors.New("corrupted object")

	// ErrInvalidStore indicates a store which does not pass validation
	ErrInvalidStore = errors.New("invalid registry store")
)
