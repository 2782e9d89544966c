package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// GenerateManifest walks a folder and builds an unpublished manifest for its regular files.
//
// Paths are relative to the folder and slash-separated. A nil fs defaults to the OS file system.
func GenerateManifest(fs afero.Fs, packageName, folder string) (*Manifest, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	files := make([]File, 0)

	err := afero.Walk(fs, folder, func(pth string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("error getting file info: %w", err)
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(folder, pth)
		if err != nil {
			return fmt.Errorf("error getting relative file path between %s and %s: %w", folder, pth, err)
		}

		object, err := hashFile(fs, pth)
		if err != nil {
			return err
		}

		files = append(files, File{
			Path:   filepath.ToSlash(rel),
			Object: object,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking over input folder %s: %w", folder, err)
	}

	manifest := &Manifest{
		ManifestVersion: CurrentManifestVersion,
		PackageName:     packageName,
		Files:           files,
	}
	manifest.Hash = HashManifest(manifest)

	return manifest, nil
}

func hashFile(fs afero.Fs, pth string) (Object, error) {
	f, err := fs.Open(pth)
	if err != nil {
		return Object{}, fmt.Errorf("error opening file %s: %w", pth, err)
	}
	defer f.Close()

	hash, size, err := HashStream(f)
	if err != nil {
		return Object{}, fmt.Errorf("error hashing file %s: %w", pth, err)
	}
	return Object{Hash: hash, Size: size}, nil
}
