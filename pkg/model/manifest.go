package model

import "math"

// CurrentManifestVersion is the only supported version of the manifest format
const CurrentManifestVersion = 1

// A Manifest is a complete description of a package version.
//
// Files are kept in ingestion order, which is the order exposed in listings.
type Manifest struct {
	ManifestVersion uint   `json:"ManifestVersion" yaml:"manifestVersion"`
	PackageName     string `json:"PackageName" yaml:"packageName"`
	PackageVersion  uint   `json:"PackageVersion" yaml:"packageVersion"`
	Published       int64  `json:"Published" yaml:"published"` // unix timestamp, in seconds
	Hash            string `json:"Hash" yaml:"hash"`
	Files           []File `json:"Files" yaml:"files"`
	_               struct{}
}

// PathIndex maps a file path to its position in a manifest
type PathIndex map[string]int

// TotalSize sums up the size of all files.
//
// Files sharing the same object are counted as many times as they appear:
// this is a logical size, not a storage footprint (see StorageSize).
// The sum saturates at math.MaxInt64.
func (m *Manifest) TotalSize() int64 {
	if m == nil {
		return 0
	}
	var total int64
	for _, file := range m.Files {
		total = addSize(total, file.Object.Size)
	}
	return total
}

// StorageSize sums up the size of distinct objects referred to by the manifest.
func (m *Manifest) StorageSize() int64 {
	if m == nil {
		return 0
	}
	var total int64
	seen := make(map[string]struct{}, len(m.Files))
	for _, file := range m.Files {
		if _, ok := seen[file.Object.Hash]; ok {
			continue
		}
		seen[file.Object.Hash] = struct{}{}
		total = addSize(total, file.Object.Size)
	}
	return total
}

func addSize(total, size int64) int64 {
	if size > 0 && total > math.MaxInt64-size {
		return math.MaxInt64
	}
	return total + size
}

// Index builds a path index over the files of this manifest.
//
// When a path appears more than once, the first occurrence wins.
func (m *Manifest) Index() PathIndex {
	if m == nil {
		return PathIndex{}
	}
	index := make(PathIndex, len(m.Files))
	for i, file := range m.Files {
		if _, ok := index[file.Path]; ok {
			continue
		}
		index[file.Path] = i
	}
	return index
}

// Lookup a file by its path
func (m *Manifest) Lookup(pth string) (File, bool) {
	if m == nil {
		return File{}, false
	}
	for _, file := range m.Files {
		if file.Path == pth {
			return file, true
		}
	}
	return File{}, false
}

// IsPublished tells if the manifest has been assigned a version by the registry
func (m *Manifest) IsPublished() bool {
	return m != nil && m.PackageVersion > 0 && m.Published > 0
}
