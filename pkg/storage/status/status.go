// Copyright © 2018 One Concern

// Package status declares error constants returned by
// implementations of the Store interface.
//
// NOTE: such constants are located in a separate package to avoid
// creating undue cyclical dependencies between pkg/storage and one
// of its implementions.
package status

import "github.com/oneconcern/pkgreg/pkg/errors"

var (
	// Sentinel errors returned by implementations of the interface defined by storage

	// ErrNotExists indicates that the fetched object does not exist on storage
	ErrNotExists = errors.New("object doesn't exist")

	// ErrUnauthorized indicates that you don't provided correct credentials to the API
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates that the backend API forbids access to the target resource
	ErrForbidden = errors.New("forbidden")

	// ErrExists indicates that the resource already exists and cannot be overridden
	ErrExists = errors.New("exists already")

	// ErrInvalidResource indicates that the storage resource has an invalid name
	ErrInvalidResource = errors.New("invalid storage resource name")

	// ErrStorageAPI indicates any other storage API error
	ErrStorageAPI = errors.New("storage API error")
)
