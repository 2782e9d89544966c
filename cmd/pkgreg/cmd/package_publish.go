package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oneconcern/pkgreg/pkg/format"
	"github.com/oneconcern/pkgreg/pkg/model"
	"github.com/oneconcern/pkgreg/pkg/registry"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const uploadConcurrency = 4

// filesToUpload selects one file per object of a manifest, skipping the objects known to the store
func filesToUpload(manifest *model.Manifest, inventory []model.Object) []model.File {
	known := make(map[string]struct{}, len(inventory))
	for _, object := range inventory {
		known[object.Hash] = struct{}{}
	}
	files := make([]model.File, 0, len(manifest.Files))
	for _, file := range manifest.Files {
		if _, ok := known[file.Object.Hash]; ok {
			continue
		}
		known[file.Object.Hash] = struct{}{}
		files = append(files, file)
	}
	return files
}

func readInventory(pth string) ([]model.Object, error) {
	if pth == "" {
		return nil, nil
	}
	f, err := os.Open(pth)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return model.ReadObjects(f)
}

// uploadFiles stores the content of files from a folder
func uploadFiles(ctx context.Context, reg *registry.Store, fs afero.Fs, folder string, files []model.File, logger *zap.Logger) error {
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(uploadConcurrency)

	for _, toPin := range files {
		file := toPin
		group.Go(func() error {
			f, err := fs.Open(filepath.Join(folder, filepath.FromSlash(file.Path)))
			if err != nil {
				return err
			}
			defer f.Close()

			object, err := reg.AddObject(gctx, f)
			if err != nil {
				return fmt.Errorf("uploading %s: %w", file.Path, err)
			}
			if object.Hash != file.Object.Hash {
				return fmt.Errorf("file %s has changed while publishing", file.Path)
			}
			logger.Debug("file uploaded", zap.String("path", file.Path), zap.Int64("size", object.Size))
			return nil
		})
	}
	return group.Wait()
}

var packagePublishCmd = &cobra.Command{
	Use:   "publish <package> <folder>",
	Short: "Publish a new version of a package",
	Long: `Publish all the files found in a folder as a new version of a package.

The new version number is assigned by the registry. Publishing the same content as an earlier
version of the package is rejected.

Content shared by several files is uploaded once. With --inventory, the objects listed in an inventory
written by "pkgreg store objects" are not uploaded again.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		packageName, folder := args[0], args[1]
		if !model.ValidatePackageName(packageName) {
			wrapFatalln(fmt.Sprintf("invalid package name %q: only lower case letters, digits, _ and - are allowed", packageName), nil)
			return
		}
		if fi, err := os.Stat(folder); err != nil || !fi.IsDir() {
			wrapFatalln(fmt.Sprintf("folder %s does not exist", folder), err)
			return
		}

		inventory, err := readInventory(pkgregFlags.inventory)
		if err != nil {
			wrapFatalln("read objects inventory", err)
			return
		}

		rt := mustRuntime()
		if rt == nil {
			return
		}
		defer rt.close()

		ctx := context.Background()
		fs := afero.NewOsFs()
		manifest, err := model.GenerateManifest(fs, packageName, folder)
		if err != nil {
			wrapFatalln("generate manifest", err)
			return
		}

		files := filesToUpload(manifest, inventory)
		rt.logger.Debug("uploading files",
			zap.Int("files", len(files)),
			zap.Int("skipped", len(manifest.Files)-len(files)),
		)
		if err = uploadFiles(ctx, rt.registry, fs, folder, files, rt.logger); err != nil {
			wrapFatalln("upload files", err)
			return
		}

		published, err := rt.registry.PublishManifest(ctx, manifest)
		if err != nil {
			wrapFatalln("publish manifest", err)
			return
		}

		fmt.Fprintf(cmd.OutOrStdout(), "published %s version %d , %d files , %s\n",
			published.PackageName, published.PackageVersion, len(published.Files), format.Size(published.TotalSize()))
	},
}

func init() {
	addInventoryFlag(packagePublishCmd)

	packageCmd.AddCommand(packagePublishCmd)
}
