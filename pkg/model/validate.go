package model

import (
	"regexp"
	"strings"

	"github.com/oneconcern/pkgreg/pkg/model/status"
)

var (
	packageNameRe = regexp.MustCompile(`^[a-z0-9_-]+$`)
	objectHashRe  = regexp.MustCompile(`^[a-f0-9_-]+$`)
)

// ValidatePackageName tells if a package name is valid
func ValidatePackageName(name string) bool {
	return packageNameRe.MatchString(name)
}

func validateBasicManifest(manifest *Manifest) error {
	if manifest == nil {
		return status.ErrInvalidManifest.Wrapf("manifest is nil")
	}
	if manifest.ManifestVersion != CurrentManifestVersion {
		return status.ErrInvalidManifest.Wrapf("unsupported manifest version %d", manifest.ManifestVersion)
	}
	if !ValidatePackageName(manifest.PackageName) {
		return status.ErrInvalidPackageName.Wrapf("%q", manifest.PackageName)
	}
	if len(manifest.Files) == 0 {
		return status.ErrInvalidManifest.Wrapf("manifest contains no files")
	}

	// duplicates are checked case-insensitively, so packages may be extracted on any file system
	paths := make(map[string]struct{}, len(manifest.Files))
	for _, file := range manifest.Files {
		if file.Path == "" {
			return status.ErrInvalidManifest.Wrapf("found empty file path")
		}
		if strings.Contains(file.Path, "..") {
			return status.ErrInvalidManifest.Wrapf("invalid file path %s", file.Path)
		}
		if file.Object.Size < 0 {
			return status.ErrInvalidManifest.Wrapf("invalid object size %d for file %s", file.Object.Size, file.Path)
		}
		if !objectHashRe.MatchString(file.Object.Hash) {
			return status.ErrInvalidManifest.Wrapf("invalid object hash %q for file %s", file.Object.Hash, file.Path)
		}
		lowerCasePath := strings.ToLower(file.Path)
		if _, ok := paths[lowerCasePath]; ok {
			return status.ErrInvalidManifest.Wrapf("duplicate file path %s", file.Path)
		}
		paths[lowerCasePath] = struct{}{}
	}

	if HashManifest(manifest) != manifest.Hash {
		return status.ErrInvalidManifest.Wrapf("manifest hash mismatch")
	}

	return nil
}

// ValidateUnpublishedManifest checks a manifest about to be published
func ValidateUnpublishedManifest(manifest *Manifest) error {
	if err := validateBasicManifest(manifest); err != nil {
		return err
	}
	if manifest.PackageVersion != 0 {
		return status.ErrInvalidManifest.Wrapf("package version is not zero")
	}
	if manifest.Published != 0 {
		return status.ErrInvalidManifest.Wrapf("published date is not zero")
	}
	return nil
}

// ValidatePublishedManifest checks a manifest retrieved from or added to the registry
func ValidatePublishedManifest(manifest *Manifest) error {
	if err := validateBasicManifest(manifest); err != nil {
		return err
	}
	if manifest.PackageVersion == 0 {
		return status.ErrInvalidManifest.Wrapf("invalid package version")
	}
	if manifest.Published <= 0 {
		return status.ErrInvalidManifest.Wrapf("invalid published date")
	}
	return nil
}
