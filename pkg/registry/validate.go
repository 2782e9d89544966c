package registry

import (
	"context"
	"fmt"

	"github.com/oneconcern/pkgreg/pkg/model"
	"github.com/oneconcern/pkgreg/pkg/registry/status"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Stats summarize the content of a registry
type Stats struct {
	Packages int64 `json:"packages" yaml:"packages"`
	Versions int64 `json:"versions" yaml:"versions"`
	Objects  int64 `json:"objects" yaml:"objects"`
	Size     int64 `json:"size" yaml:"size"`
}

// Validate checks the consistency of the whole registry:
// all manifests must be valid and refer to existing objects, and
// every object must hash back to its key with the recorded size.
func (s *Store) Validate(ctx context.Context) (Stats, error) {
	var stats Stats

	manifests, packages, err := s.allManifests(ctx)
	if err != nil {
		return stats, fmt.Errorf("error listing all manifests: %w", err)
	}

	for _, manifest := range manifests {
		if err = model.ValidatePublishedManifest(manifest); err != nil {
			return stats, status.ErrInvalidStore.Wrap(fmt.Errorf("manifest %s version %d: %w",
				manifest.PackageName, manifest.PackageVersion, err))
		}
	}

	objects, err := s.GetObjects(ctx)
	if err != nil {
		return stats, fmt.Errorf("error getting objects list from store: %w", err)
	}

	known := make(map[string]struct{}, len(objects))
	for _, object := range objects {
		known[object.Hash] = struct{}{}
		stats.Size += object.Size
	}

	for _, manifest := range manifests {
		for _, file := range manifest.Files {
			if _, ok := known[file.Object.Hash]; !ok {
				return stats, status.ErrInvalidStore.Wrap(status.ErrMissingObjects.Wrapf(
					"unable to find object %s from package %s version %d",
					file.Object.Hash, manifest.PackageName, manifest.PackageVersion))
			}
		}
	}

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)
	for _, toPin := range objects {
		object := toPin
		group.Go(func() error {
			return s.checkObject(gctx, object)
		})
	}
	if err = group.Wait(); err != nil {
		return stats, status.ErrInvalidStore.Wrap(err)
	}

	stats.Packages = packages
	stats.Versions = int64(len(manifests))
	stats.Objects = int64(len(objects))

	s.l.Info("registry validated",
		zap.Int64("packages", stats.Packages),
		zap.Int64("versions", stats.Versions),
		zap.Int64("objects", stats.Objects),
		zap.Int64("size", stats.Size),
	)
	return stats, nil
}

func (s *Store) allManifests(ctx context.Context) ([]*model.Manifest, int64, error) {
	names, err := s.GetNames(ctx)
	if err != nil {
		return nil, 0, err
	}

	manifests := make([]*model.Manifest, 0, len(names))
	for _, name := range names {
		versions, err := s.GetVersions(ctx, name)
		if err != nil {
			return nil, 0, err
		}
		for _, version := range versions {
			manifest, err := s.GetManifest(ctx, name, version)
			if err != nil {
				return nil, 0, err
			}
			manifests = append(manifests, manifest)
		}
	}
	return manifests, int64(len(names)), nil
}

func (s *Store) checkObject(ctx context.Context, object model.Object) error {
	reader, err := s.OpenObject(ctx, object.Hash)
	if err != nil {
		return err
	}
	defer reader.Close()

	hash, read, err := model.HashStream(reader)
	if err != nil {
		return status.ErrCorruptedObject.Wrapf("error hashing object %s: %v", object.Hash, err)
	}
	if read != object.Size {
		return status.ErrCorruptedObject.Wrapf("found size mismatch for object %s: expected %d but read %d bytes",
			object.Hash, object.Size, read)
	}
	if hash != object.Hash {
		return status.ErrCorruptedObject.Wrapf("found hash mismatch for object %s: found %s",
			object.Hash, hash)
	}
	return nil
}
