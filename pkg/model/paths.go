package model

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	manifestsPrefix  = "manifests/"
	objectsPrefix    = "objects/"
	manifestFileName = "manifest.json"
	objectSizeSuffix = ".size"
)

// ArchivePathComponents defines the unique path parts of a key in the registry store
type ArchivePathComponents struct {
	PackageName     string
	PackageVersion  uint
	ObjectHash      string
	ArchiveFileName string
	IsObjectSize    bool
}

// GetArchivePathPrefixToManifests yields the prefix shared by all manifest keys
func GetArchivePathPrefixToManifests() string {
	return manifestsPrefix
}

// GetArchivePathPrefixToPackage yields the prefix shared by all versions of a package
func GetArchivePathPrefixToPackage(packageName string) string {
	return manifestsPrefix + packageName + "/"
}

// GetArchivePathToManifest yields the key of a manifest, as in: manifests/{name}/{version}/manifest.json
func GetArchivePathToManifest(packageName string, version uint) string {
	return fmt.Sprint(GetArchivePathPrefixToPackage(packageName), version, "/", manifestFileName)
}

// GetArchivePathPrefixToObjects yields the prefix shared by all object keys
func GetArchivePathPrefixToObjects() string {
	return objectsPrefix
}

// GetArchivePathToObject yields the key of an object, as in: objects/{hash[:2]}/{hash[2:]}
func GetArchivePathToObject(hash string) string {
	if len(hash) <= 2 {
		return objectsPrefix + hash
	}
	return objectsPrefix + hash[:2] + "/" + hash[2:]
}

// GetArchivePathToObjectSize yields the key holding the uncompressed size of an object
func GetArchivePathToObjectSize(hash string) string {
	return GetArchivePathToObject(hash) + objectSizeSuffix
}

// GetArchivePathComponents yields all components from a parsed registry key.
func GetArchivePathComponents(archivePath string) (ArchivePathComponents, error) {
	const (
		manifestParts = 4 // as in: manifests/{name}/{version}/manifest.json
		objectParts   = 3 // as in: objects/{hash[:2]}/{hash[2:]}
	)
	cs := strings.Split(archivePath, "/")
	switch cs[0] { // we always have at least 1 element

	case strings.TrimSuffix(manifestsPrefix, "/"):
		if len(cs) != manifestParts {
			return ArchivePathComponents{},
				fmt.Errorf("path is invalid: expect path to manifest to have %d parts: %s", manifestParts, archivePath)
		}
		if cs[3] != manifestFileName {
			return ArchivePathComponents{},
				fmt.Errorf("path is invalid, last element in the path should be %q: %s", manifestFileName, archivePath)
		}
		version, err := strconv.ParseUint(cs[2], 10, 0)
		if err != nil || version == 0 {
			return ArchivePathComponents{},
				fmt.Errorf("path is invalid, expect a positive version number: %s", archivePath)
		}
		return ArchivePathComponents{
			PackageName:     cs[1],
			PackageVersion:  uint(version),
			ArchiveFileName: cs[3],
		}, nil

	case strings.TrimSuffix(objectsPrefix, "/"):
		if len(cs) != objectParts {
			return ArchivePathComponents{},
				fmt.Errorf("path is invalid: expect path to object to have %d parts: %s", objectParts, archivePath)
		}
		name := cs[2]
		isSize := strings.HasSuffix(name, objectSizeSuffix)
		return ArchivePathComponents{
			ObjectHash:      cs[1] + strings.TrimSuffix(name, objectSizeSuffix),
			ArchiveFileName: name,
			IsObjectSize:    isSize,
		}, nil

	default:
		return ArchivePathComponents{}, fmt.Errorf("path is invalid: unknown key type: %s", archivePath)
	}
}
