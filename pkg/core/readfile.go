package core

import (
	"context"

	"github.com/oneconcern/pkgreg/pkg/core/status"
	"github.com/oneconcern/pkgreg/pkg/model"
)

// ReadFile retrieves the content of a single file from a package version.
func ReadFile(ctx context.Context, resolver ManifestResolver, objects ObjectReader, packageName string, version uint, pth string) (model.File, []byte, error) {
	manifest, err := resolver.Resolve(ctx, packageName, version)
	if err != nil {
		return model.File{}, nil, err
	}
	if manifest == nil {
		return model.File{}, nil, status.ErrNotFound.Wrapf("package %q version %d", packageName, version)
	}

	file, ok := manifest.Lookup(pth)
	if !ok {
		return model.File{}, nil, status.ErrNotFound.Wrapf("file %q in package %q version %d", pth, packageName, version)
	}

	content, err := objects.ReadObject(ctx, file.Object.Hash)
	if err != nil {
		return file, nil, err
	}
	return file, content, nil
}
