package core

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/oneconcern/pkgreg/pkg/model"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ObjectOpener knows how to stream the content of an object
type ObjectOpener interface {
	OpenObject(ctx context.Context, hash string) (io.ReadCloser, error)
}

// DownloadStats sums up what a download has done
type DownloadStats struct {
	Downloaded int      `json:"Downloaded" yaml:"downloaded"` // files written with content from the store
	Copied     int      `json:"Copied" yaml:"copied"`         // files copied from a local file with the same content
	Unchanged  int      `json:"Unchanged" yaml:"unchanged"`   // files already present with the expected content
	Bytes      int64    `json:"Bytes" yaml:"bytes"`           // bytes read from the store
	Removed    []string `json:"Removed" yaml:"removed"`       // paths removed when cleaning
}

// Download writes all the files of a package version to a local folder.
//
// Files already present with the expected size and hash are left untouched. The content of an
// object is fetched once, then copied locally to all files sharing it. Written files are verified
// against their expected size and hash. With WithClean, all other files and folders are removed first.
func Download(ctx context.Context, fs afero.Fs, objects ObjectOpener, manifest *model.Manifest, folder string, opts ...LocalOption) (DownloadStats, error) {
	o := defaultLocalOptions(opts)
	stats := DownloadStats{Removed: make([]string, 0)}

	if err := model.ValidatePublishedManifest(manifest); err != nil {
		return stats, fmt.Errorf("cannot download package: %w", err)
	}
	logger := o.logger.With(
		zap.String("package", manifest.PackageName),
		zap.Uint("version", manifest.PackageVersion),
		zap.String("folder", folder),
	)

	if o.clean {
		removed, err := Clean(ctx, fs, manifest, folder)
		stats.Removed = append(stats.Removed, removed...)
		if err != nil {
			return stats, err
		}
	}

	// files to write, grouped by object in order of first appearance
	var groups [][]model.File
	byHash := make(map[string]int)
	sources := make(map[string]string)
	for _, file := range manifest.Files {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		target := localPath(folder, file.Path)
		present, matches, err := localFileMatches(fs, target, file.Object)
		if err != nil {
			return stats, err
		}
		if present && matches {
			stats.Unchanged++
			if _, ok := sources[file.Object.Hash]; !ok {
				sources[file.Object.Hash] = target
			}
			continue
		}
		i, ok := byHash[file.Object.Hash]
		if !ok {
			i = len(groups)
			byHash[file.Object.Hash] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], file)
	}

	var mx sync.Mutex
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(o.concurrency)
	for _, toPin := range groups {
		files := toPin
		source, isLocal := sources[files[0].Object.Hash]
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			open := func() (io.ReadCloser, error) { return objects.OpenObject(gctx, files[0].Object.Hash) }
			if isLocal {
				open = func() (io.ReadCloser, error) { return fs.Open(source) }
			}
			if err := writeObjectToFiles(fs, open, folder, files); err != nil {
				return err
			}

			mx.Lock()
			defer mx.Unlock()
			if isLocal {
				stats.Copied += len(files)
			} else {
				stats.Downloaded++
				stats.Copied += len(files) - 1
				stats.Bytes += files[0].Object.Size
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return stats, err
	}

	logger.Info("package downloaded",
		zap.Int("downloaded", stats.Downloaded),
		zap.Int("copied", stats.Copied),
		zap.Int("unchanged", stats.Unchanged),
		zap.Int("removed", len(stats.Removed)),
	)
	return stats, nil
}

// writeObjectToFiles writes the content of an object to the first file, then copies it to the other ones
func writeObjectToFiles(fs afero.Fs, open func() (io.ReadCloser, error), folder string, files []model.File) error {
	first := localPath(folder, files[0].Path)
	reader, err := open()
	if err != nil {
		return fmt.Errorf("error opening content for file %s: %w", files[0].Path, err)
	}
	err = writeFile(fs, first, reader, files[0])
	_ = reader.Close()
	if err != nil {
		return err
	}

	for _, file := range files[1:] {
		source, err := fs.Open(first)
		if err != nil {
			return fmt.Errorf("error opening file %s: %w", first, err)
		}
		err = writeFile(fs, localPath(folder, file.Path), source, file)
		_ = source.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// writeFile writes a local file, verifying its size and hash
func writeFile(fs afero.Fs, target string, reader io.Reader, file model.File) error {
	if err := fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("error creating directory for file %s: %w", file.Path, err)
	}
	f, err := fs.Create(target)
	if err != nil {
		return fmt.Errorf("error creating file %s: %w", target, err)
	}

	hasher := model.NewHasher()
	written, err := io.Copy(io.MultiWriter(f, hasher), reader)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("error writing data for file %s: %w", file.Path, err)
	}

	if written != file.Object.Size {
		return fmt.Errorf("error writing data for file %s: received %d but expected %d bytes", file.Path, written, file.Object.Size)
	}
	if hash := model.HashString(hasher); hash != file.Object.Hash {
		return fmt.Errorf("error writing data for file %s: found hash %s but expected %s", file.Path, hash, file.Object.Hash)
	}
	return nil
}
