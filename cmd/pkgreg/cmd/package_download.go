package cmd

import (
	"context"
	"fmt"

	"github.com/oneconcern/pkgreg/pkg/core"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var packageDownloadCmd = &cobra.Command{
	Use:   "download <package> <version> <folder>",
	Short: "Download a package version to a folder",
	Long: `Download all the files of a package version, which may be "latest", to a local folder.

Files already present with the expected content are not downloaded again. With --clean, all files and folders
which are not part of the package are removed. Entries at the root of the folder starting with a dot are left alone.`,
	Args: cobra.ExactArgs(3),
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

		ctx := context.Background()
		manifest, err := resolveManifest(ctx, rt.registry, args[0], version)
		if err != nil {
			wrapFatalln("get manifest", err)
			return
		}

		stats, err := core.Download(ctx, afero.NewOsFs(), rt.registry, manifest, args[2],
			core.WithClean(pkgregFlags.core.Clean),
			core.LocalWithLogger(rt.logger),
		)
		if err != nil {
			wrapFatalln("download package", err)
			return
		}

		if f := pkgregFlags.core.Format; f != formatText {
			if err = renderDocument(cmd.OutOrStdout(), f, stats); err != nil {
				wrapFatalln("render download", err)
			}
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "downloaded %s version %d , %d downloaded , %d copied , %d unchanged , %d removed\n",
			manifest.PackageName, manifest.PackageVersion, stats.Downloaded, stats.Copied, stats.Unchanged, len(stats.Removed))
	},
}

func init() {
	addCleanFlag(packageDownloadCmd, "Remove files and folders which are not part of the package")
	addFormatFlag(packageDownloadCmd)

	packageCmd.AddCommand(packageDownloadCmd)
}
