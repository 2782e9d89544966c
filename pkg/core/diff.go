// Copyright © 2018 One Concern

package core

import (
	"github.com/oneconcern/pkgreg/pkg/model"
)

const (
	// DiffEntryTypeAdd indicates the newer manifest exhibits an extra file
	DiffEntryTypeAdd = iota
	// DiffEntryTypeDel indicates the newer manifest exhibits a missing file
	DiffEntryTypeDel
	// DiffEntryTypeDif indicates the file content differs between the two manifests
	DiffEntryTypeDif
)

// DiffEntryType qualifies the type of difference between two manifests
type DiffEntryType uint

func (det DiffEntryType) String() string {
	diffEntryStrings := map[DiffEntryType]string{
		DiffEntryTypeAdd: "A",
		DiffEntryTypeDel: "D",
		DiffEntryTypeDif: "U",
	}
	return diffEntryStrings[det]
}

// ModifiedFile pairs both sides of a file which content has changed
type ModifiedFile struct {
	Old model.File `json:"old" yaml:"old"`
	New model.File `json:"new" yaml:"new"`
}

// DiffResult describes all differences between two versions of a package.
//
// Added follows the order of the newer manifest, Deleted and Modified
// follow the order of the older one. A path shows up in at most one of them.
type DiffResult struct {
	Added    []model.File   `json:"Added" yaml:"added"`
	Deleted  []model.File   `json:"Deleted" yaml:"deleted"`
	Modified []ModifiedFile `json:"Modified" yaml:"modified"`
}

// IsEmpty tells if both manifests hold the same files
func (d DiffResult) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Deleted) == 0 && len(d.Modified) == 0
}

// Len is the number of paths that differ
func (d DiffResult) Len() int {
	return len(d.Added) + len(d.Deleted) + len(d.Modified)
}

// DiffEntry describes a single point of difference between two manifests,
// as a flat record suitable for line-oriented output
type DiffEntry struct {
	Type       DiffEntryType
	Name       string
	Existing   *model.File
	Additional *model.File
}

// Entries flattens the result: added files first, then deleted, then modified
func (d DiffResult) Entries() []DiffEntry {
	entries := make([]DiffEntry, 0, d.Len())
	for i := range d.Added {
		entries = append(entries, DiffEntry{
			Type:       DiffEntryTypeAdd,
			Name:       d.Added[i].Path,
			Additional: &d.Added[i],
		})
	}
	for i := range d.Deleted {
		entries = append(entries, DiffEntry{
			Type:     DiffEntryTypeDel,
			Name:     d.Deleted[i].Path,
			Existing: &d.Deleted[i],
		})
	}
	for i := range d.Modified {
		entries = append(entries, DiffEntry{
			Type:       DiffEntryTypeDif,
			Name:       d.Modified[i].Old.Path,
			Existing:   &d.Modified[i].Old,
			Additional: &d.Modified[i].New,
		})
	}
	return entries
}

// Diff classifies every file path of two manifests as added, deleted or modified,
// going from older to newer.
//
// A nil manifest is handled as an empty one. When a path is listed several times
// in a manifest, only its first occurrence is considered.
func Diff(older, newer *model.Manifest) DiffResult {
	olderFiles, newerFiles := filesOf(older), filesOf(newer)
	olderIndex, newerIndex := older.Index(), newer.Index()

	result := DiffResult{
		Added:    make([]model.File, 0),
		Deleted:  make([]model.File, 0),
		Modified: make([]ModifiedFile, 0),
	}

	for i, file := range newerFiles {
		if newerIndex[file.Path] != i {
			continue
		}
		if _, ok := olderIndex[file.Path]; !ok {
			result.Added = append(result.Added, file)
		}
	}

	for i, file := range olderFiles {
		if olderIndex[file.Path] != i {
			continue
		}
		j, ok := newerIndex[file.Path]
		if !ok {
			result.Deleted = append(result.Deleted, file)
			continue
		}
		if !file.Object.Equal(newerFiles[j].Object) {
			result.Modified = append(result.Modified, ModifiedFile{
				Old: file,
				New: newerFiles[j],
			})
		}
	}

	return result
}

func filesOf(m *model.Manifest) []model.File {
	if m == nil {
		return nil
	}
	return m.Files
}
