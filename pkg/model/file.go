package model

import "strings"

// File represents a file that is part of a package
type File struct {
	Path   string `json:"Path" yaml:"path"`
	Object Object `json:"Object" yaml:"object"`
	_      struct{}
}

// Name of the file, without its folder
func (f File) Name() string {
	return NameOf(f.Path)
}

// NameOf yields the part of a slash-separated path after the last slash,
// or the whole path when there is no slash.
//
// A path ending with a slash yields an empty name.
func NameOf(pth string) string {
	return pth[strings.LastIndexByte(pth, '/')+1:]
}
