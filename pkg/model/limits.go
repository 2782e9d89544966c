package model

import "github.com/oneconcern/pkgreg/pkg/model/status"

// Limits constrain the manifests accepted by the registry.
//
// The zero value of each limit means unlimited.
type Limits struct {
	MaxFileSize    int64 `json:"maxFileSize" yaml:"maxFileSize"`
	MaxPackageSize int64 `json:"maxPackageSize" yaml:"maxPackageSize"`
	MaxFilesCount  int   `json:"maxFilesCount" yaml:"maxFilesCount"`
	MaxPathLength  int   `json:"maxPathLength" yaml:"maxPathLength"`
}

// CheckLimits returns an error if the manifest exceeds any of the limits
func CheckLimits(manifest *Manifest, limits Limits) error {
	if limits.MaxFilesCount > 0 && len(manifest.Files) > limits.MaxFilesCount {
		return status.ErrLimitExceeded.Wrapf("number of files is %d and exceeds the limit of %d",
			len(manifest.Files), limits.MaxFilesCount)
	}

	for _, file := range manifest.Files {
		if limits.MaxPathLength > 0 && len(file.Path) > limits.MaxPathLength {
			return status.ErrLimitExceeded.Wrapf("path length of %d exceeds the limit of %d",
				len(file.Path), limits.MaxPathLength)
		}
		if limits.MaxFileSize > 0 && file.Object.Size > limits.MaxFileSize {
			return status.ErrLimitExceeded.Wrapf("file size of %d exceeds the limit of %d",
				file.Object.Size, limits.MaxFileSize)
		}
	}

	if size := manifest.TotalSize(); limits.MaxPackageSize > 0 && size > limits.MaxPackageSize {
		return status.ErrLimitExceeded.Wrapf("package size of %d exceeds the limit of %d",
			size, limits.MaxPackageSize)
	}

	return nil
}
