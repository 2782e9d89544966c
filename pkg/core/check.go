package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/oneconcern/pkgreg/pkg/model"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// CheckResult lists the differences found between a local folder and a package version.
//
// Paths are slash-separated and relative to the folder.
type CheckResult struct {
	Missing  []string `json:"Missing" yaml:"missing"`
	Modified []string `json:"Modified" yaml:"modified"`
	Extra    []string `json:"Extra" yaml:"extra"`
}

// IsClean tells if the folder holds exactly the package
func (r CheckResult) IsClean() bool {
	return len(r.Missing) == 0 && len(r.Modified) == 0 && len(r.Extra) == 0
}

// Check compares the files in a local folder with the files of a manifest.
//
// Every file of the package must be present with the expected size and hash. With WithClean,
// files and folders which are not part of the package are reported as extra. Entries at the root
// of the folder starting with a dot are ignored.
func Check(ctx context.Context, fs afero.Fs, manifest *model.Manifest, folder string, opts ...LocalOption) (CheckResult, error) {
	o := defaultLocalOptions(opts)
	result := CheckResult{
		Missing:  make([]string, 0),
		Modified: make([]string, 0),
		Extra:    make([]string, 0),
	}
	if manifest == nil {
		return result, errors.New("cannot check a folder against a nil manifest")
	}

	for _, file := range manifest.Files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		present, matches, err := localFileMatches(fs, localPath(folder, file.Path), file.Object)
		if err != nil {
			return result, err
		}
		switch {
		case !present:
			result.Missing = append(result.Missing, file.Path)
		case !matches:
			result.Modified = append(result.Modified, file.Path)
		}
	}

	if o.clean {
		err := walkExtras(ctx, fs, manifest, folder, func(rel, _ string, _ os.FileInfo) error {
			result.Extra = append(result.Extra, rel)
			return nil
		})
		if err != nil {
			return result, err
		}
	}

	o.logger.Debug("folder checked",
		zap.String("package", manifest.PackageName),
		zap.Uint("version", manifest.PackageVersion),
		zap.String("folder", folder),
		zap.Int("missing", len(result.Missing)),
		zap.Int("modified", len(result.Modified)),
		zap.Int("extra", len(result.Extra)),
	)
	return result, nil
}

// Clean removes from a local folder all files and folders which are not part of a package.
//
// It returns the removed paths.
func Clean(ctx context.Context, fs afero.Fs, manifest *model.Manifest, folder string) ([]string, error) {
	removed := make([]string, 0)
	if manifest == nil {
		return removed, errors.New("cannot clean a folder against a nil manifest")
	}
	err := walkExtras(ctx, fs, manifest, folder, func(rel, pth string, _ os.FileInfo) error {
		if err := fs.RemoveAll(pth); err != nil {
			return fmt.Errorf("error cleaning path %s: %w", pth, err)
		}
		removed = append(removed, rel)
		return nil
	})
	return removed, err
}

func localPath(folder, pth string) string {
	return filepath.Join(folder, filepath.FromSlash(pth))
}

// localFileMatches tells if a local file exists, and if so whether it holds the content of an object
func localFileMatches(fs afero.Fs, pth string, object model.Object) (bool, bool, error) {
	info, err := fs.Stat(pth)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("error reading stats for file %s: %w", pth, err)
	}
	if !info.Mode().IsRegular() || info.Size() != object.Size {
		return true, false, nil
	}

	f, err := fs.Open(pth)
	if err != nil {
		return true, false, fmt.Errorf("error opening file %s: %w", pth, err)
	}
	defer f.Close()

	hash, _, err := model.HashStream(f)
	if err != nil {
		return true, false, fmt.Errorf("error hashing file %s: %w", pth, err)
	}
	return true, hash == object.Hash, nil
}

// packageFolders yields all the folders holding files of a package, as slash-separated relative paths
func packageFolders(manifest *model.Manifest) map[string]struct{} {
	folders := make(map[string]struct{})
	for _, file := range manifest.Files {
		for dir := path.Dir(file.Path); dir != "." && dir != "/"; dir = path.Dir(dir) {
			if _, ok := folders[dir]; ok {
				break
			}
			folders[dir] = struct{}{}
		}
	}
	return folders
}

// walkExtras visits every entry of a local folder which is not part of a package.
//
// Extra folders are visited once, not their content.
func walkExtras(ctx context.Context, fs afero.Fs, manifest *model.Manifest, folder string, visit func(rel, pth string, info os.FileInfo) error) error {
	files := manifest.Index()
	folders := packageFolders(manifest)

	err := afero.Walk(fs, folder, func(pth string, info os.FileInfo, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return fmt.Errorf("error walking over folder %s: %w", folder, err)
		}
		if err = ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(folder, pth)
		if err != nil {
			return fmt.Errorf("error getting relative path between %s and %s: %w", folder, pth, err)
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if strings.HasPrefix(rel, ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if _, ok := folders[rel]; ok {
				return nil
			}
			if err = visit(rel, pth, info); err != nil {
				return err
			}
			return filepath.SkipDir
		}

		if _, ok := files[rel]; ok && info.Mode().IsRegular() {
			return nil
		}
		return visit(rel, pth, info)
	})
	return err
}
