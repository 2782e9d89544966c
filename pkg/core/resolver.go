package core

import (
	"context"

	"github.com/oneconcern/pkgreg/pkg/model"
)

// ManifestResolver knows how to retrieve the manifest of a package version.
//
// Implementations return an error matching status.ErrNotFound when the version does not exist,
// and must honor the cancellation of the context.
type ManifestResolver interface {
	Resolve(ctx context.Context, packageName string, version uint) (*model.Manifest, error)
}

// ResolverFunc adapts a function to a ManifestResolver
type ResolverFunc func(context.Context, string, uint) (*model.Manifest, error)

// Resolve a manifest
func (fn ResolverFunc) Resolve(ctx context.Context, packageName string, version uint) (*model.Manifest, error) {
	return fn(ctx, packageName, version)
}

// ObjectReader knows how to stream the content of an object
type ObjectReader interface {
	ReadObject(ctx context.Context, hash string) ([]byte, error)
}
