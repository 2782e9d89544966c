package cmd

import (
	"context"
	"fmt"

	"github.com/oneconcern/pkgreg/pkg/format"
	"github.com/oneconcern/pkgreg/pkg/model"
	"github.com/oneconcern/pkgreg/pkg/registry"
	"github.com/spf13/cobra"
)

type fileListEntry struct {
	Path  string
	Name  string
	Size  string
	Bytes int64
	Hash  string
}

// resolveManifest fetches a package version, where version 0 stands for the latest one
func resolveManifest(ctx context.Context, reg *registry.Store, packageName string, version uint) (*model.Manifest, error) {
	if version == 0 {
		latest, err := reg.GetLatestVersion(ctx, packageName)
		if err != nil {
			return nil, err
		}
		version = latest
	}
	return reg.Resolve(ctx, packageName, version)
}

var packageGetCmd = &cobra.Command{
	Use:   "get <package> <version>",
	Short: "Get the manifest of a package version",
	Long: `Get the manifest of a package version, which may be "latest".

The text output lists the files of the package, one per line. Use --format json to get the manifest as stored in the registry.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		version, err := parseVersion(args[1])
		if err != nil {
			wrapFatalln("invalid arguments", err)
			return
		}

		rt := mustRuntime()
		if rt == nil {
			return
		}
		defer rt.close()

		manifest, err := resolveManifest(context.Background(), rt.registry, args[0], version)
		if err != nil {
			wrapFatalln("get manifest", err)
			return
		}

		if f := pkgregFlags.core.Format; f != formatText {
			if err = renderDocument(cmd.OutOrStdout(), f, manifest); err != nil {
				wrapFatalln("render manifest", err)
			}
			return
		}

		t, err := lineTemplate(`{{.Path}} , {{.Size}} , {{.Hash}}`)
		if err != nil {
			wrapFatalln("invalid template", err)
			return
		}

		w := cmd.OutOrStdout()
		if pkgregFlags.core.Template == "" {
			fmt.Fprintf(w, "# %s version %d, published %s, %d files, %s (%s stored)\n",
				manifest.PackageName, manifest.PackageVersion, format.Timestamp(manifest.Published),
				len(manifest.Files), format.Size(manifest.TotalSize()), format.Size(manifest.StorageSize()))
		}
		items := make([]interface{}, 0, len(manifest.Files))
		for _, file := range manifest.Files {
			items = append(items, fileListEntry{
				Path:  file.Path,
				Name:  file.Name(),
				Size:  format.Size(file.Object.Size),
				Bytes: file.Object.Size,
				Hash:  file.Object.Hash,
			})
		}
		if err = renderLines(w, t, items...); err != nil {
			wrapFatalln("render manifest", err)
		}
	},
}

func init() {
	addFormatFlag(packageGetCmd)
	addTemplateFlag(packageGetCmd)

	packageCmd.AddCommand(packageGetCmd)
}
