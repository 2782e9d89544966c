package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	corestatus "github.com/oneconcern/pkgreg/pkg/core/status"
	"github.com/oneconcern/pkgreg/pkg/model"
	"github.com/oneconcern/pkgreg/pkg/registry/status"
	"github.com/oneconcern/pkgreg/pkg/storage"
	storagestatus "github.com/oneconcern/pkgreg/pkg/storage/status"
	"go.uber.org/zap"
)

// PublishManifest publishes a new version of a package.
//
// The manifest must be unpublished, all its objects must be present in the store and its
// content must differ from every earlier version. The published manifest is returned with
// its assigned version, timestamp and hash. The input manifest is left unchanged.
func (s *Store) PublishManifest(ctx context.Context, manifest *model.Manifest) (*model.Manifest, error) {
	if err := model.ValidateUnpublishedManifest(manifest); err != nil {
		return nil, fmt.Errorf("error validating unpublished manifest: %w", err)
	}
	if err := model.CheckLimits(manifest, s.limits); err != nil {
		return nil, err
	}

	missing, err := s.missingObjects(ctx, manifest)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, status.ErrMissingObjects.Wrapf("%d objects, including %s", len(missing), missing[0])
	}

	s.publications.Lock()
	defer s.publications.Unlock()

	versions, err := s.GetVersions(ctx, manifest.PackageName)
	if err != nil {
		return nil, fmt.Errorf("error getting existing versions for package %s: %w", manifest.PackageName, err)
	}

	if err = s.searchDuplicate(ctx, manifest, versions); err != nil {
		return nil, err
	}

	var newVersion uint = 1
	for _, version := range versions {
		if version >= newVersion {
			newVersion = version + 1
		}
	}

	published := *manifest
	published.PackageVersion = newVersion
	published.Published = s.now().Unix()
	published.Hash = model.HashManifest(&published)

	if err = s.addManifest(ctx, &published); err != nil {
		return nil, err
	}

	s.metrics.Published()
	s.l.Info("package published",
		zap.String("package", published.PackageName),
		zap.Uint("version", published.PackageVersion),
		zap.Int("files", len(published.Files)),
		zap.Int64("size", published.TotalSize()),
	)
	return &published, nil
}

// searchDuplicate looks for an earlier version with the same files and objects, in any order.
func (s *Store) searchDuplicate(ctx context.Context, manifest *model.Manifest, versions []uint) error {
	for _, version := range versions {
		existing, err := s.GetManifest(ctx, manifest.PackageName, version)
		if err != nil {
			return fmt.Errorf("error getting manifest for package %s version %d: %w",
				manifest.PackageName, version, err)
		}
		if len(existing.Files) != len(manifest.Files) {
			continue
		}

		index := existing.Index()
		identical := true
		for _, file := range manifest.Files {
			pos, ok := index[file.Path]
			if !ok || existing.Files[pos].Object != file.Object {
				identical = false
				break
			}
		}
		if identical {
			return status.ErrDuplicatePackage.Wrapf("found identical older version %d for package %s",
				version, manifest.PackageName)
		}
	}
	return nil
}

// AddManifest stores an already published manifest, such as one imported from another registry
func (s *Store) AddManifest(ctx context.Context, manifest *model.Manifest) error {
	s.publications.Lock()
	defer s.publications.Unlock()

	return s.addManifest(ctx, manifest)
}

func (s *Store) addManifest(ctx context.Context, manifest *model.Manifest) error {
	if err := model.ValidatePublishedManifest(manifest); err != nil {
		return fmt.Errorf("error validating published manifest: %w", err)
	}

	buf, err := model.MarshalManifest(manifest)
	if err != nil {
		return fmt.Errorf("error marshalling manifest to JSON: %w", err)
	}

	key := model.GetArchivePathToManifest(manifest.PackageName, manifest.PackageVersion)
	err = s.store.Put(ctx, key, bytes.NewReader(buf), storage.NoOverWrite)
	if err != nil {
		if errors.Is(err, storagestatus.ErrExists) {
			return status.ErrManifestExists.Wrapf("package %s version %d", manifest.PackageName, manifest.PackageVersion)
		}
		return fmt.Errorf("error writing manifest %s: %w", key, err)
	}

	s.remember(manifest)
	return nil
}

// GetManifest retrieves the manifest of a package version.
//
// A version which does not exist yields an error matching core/status.ErrNotFound.
// The returned manifest may be shared with other callers and must not be modified.
func (s *Store) GetManifest(ctx context.Context, packageName string, version uint) (*model.Manifest, error) {
	if manifest, ok := s.cached(packageName, version); ok {
		return manifest, nil
	}
	if !model.ValidatePackageName(packageName) || version == 0 {
		return nil, corestatus.ErrNotFound.Wrapf("package %s in version %d does not exist", packageName, version)
	}

	buf, err := storage.ReadAll(ctx, s.store, model.GetArchivePathToManifest(packageName, version))
	if err != nil {
		if errors.Is(err, storagestatus.ErrNotExists) {
			return nil, corestatus.ErrNotFound.Wrapf("package %s in version %d does not exist", packageName, version)
		}
		return nil, fmt.Errorf("error reading manifest for package %s in version %d: %w", packageName, version, err)
	}

	manifest, err := model.UnmarshalManifest(buf)
	if err != nil {
		return nil, fmt.Errorf("error unmarshalling manifest JSON: %w", err)
	}

	s.remember(manifest)
	return manifest, nil
}

// Resolve a package version.
//
// Resolution outcomes are measured by the caller, e.g. core.Compare.
func (s *Store) Resolve(ctx context.Context, packageName string, version uint) (*model.Manifest, error) {
	return s.GetManifest(ctx, packageName, version)
}

// GetNames lists all package names, sorted
func (s *Store) GetNames(ctx context.Context) ([]string, error) {
	keys, err := s.store.KeysPrefix(ctx, model.GetArchivePathPrefixToManifests())
	if err != nil {
		return nil, fmt.Errorf("error listing manifests: %w", err)
	}

	names := make([]string, 0)
	seen := make(map[string]struct{})
	for _, key := range keys {
		apc, err := model.GetArchivePathComponents(key)
		if err != nil {
			s.l.Warn("ignoring unexpected key in manifests", zap.String("key", key), zap.Error(err))
			continue
		}
		if _, ok := seen[apc.PackageName]; ok {
			continue
		}
		seen[apc.PackageName] = struct{}{}
		names = append(names, apc.PackageName)
	}

	sort.Strings(names)
	return names, nil
}

// GetVersions lists all published versions of a package, in increasing order.
//
// An unknown package has no versions.
func (s *Store) GetVersions(ctx context.Context, packageName string) ([]uint, error) {
	versions := make([]uint, 0)
	if !model.ValidatePackageName(packageName) {
		return versions, nil
	}

	keys, err := s.store.KeysPrefix(ctx, model.GetArchivePathPrefixToPackage(packageName))
	if err != nil {
		return nil, fmt.Errorf("error listing versions of package %s: %w", packageName, err)
	}

	for _, key := range keys {
		apc, err := model.GetArchivePathComponents(key)
		if err != nil || apc.PackageName != packageName {
			s.l.Warn("ignoring unexpected key in package", zap.String("key", key), zap.Error(err))
			continue
		}
		versions = append(versions, apc.PackageVersion)
	}

	sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })
	return versions, nil
}

// GetLatestVersion yields the most recent version of a package
func (s *Store) GetLatestVersion(ctx context.Context, packageName string) (uint, error) {
	versions, err := s.GetVersions(ctx, packageName)
	if err != nil {
		return 0, err
	}
	if len(versions) == 0 {
		return 0, corestatus.ErrNotFound.Wrapf("package %s has no published version", packageName)
	}
	return versions[len(versions)-1], nil
}
