package cmd

import (
	"context"

	"github.com/oneconcern/pkgreg/pkg/core"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// exit code when a folder does not match a package version
const exitCodeCheckFailed = 3

type checkLineEntry struct {
	Problem string
	Path    string
}

var packageCheckCmd = &cobra.Command{
	Use:   "check <package> <version> <folder>",
	Short: "Check a folder against a package version",
	Long: `Check that a local folder holds all the files of a package version, which may be "latest".

Each line of output shows a file which is missing or modified. With --clean, files and folders
which are not part of the package are reported as extra:

	missing , a.txt
	modified , sub/y.txt
	extra , junk.txt

When the folder does not match the package, the command exits with code 3.`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		version, err := parseVersion(args[1])
		if err != nil {
			wrapFatalln("invalid arguments", err)
			return
		}

		t, err := lineTemplate(`{{.Problem}} , {{.Path}}`)
		if err != nil {
			wrapFatalln("invalid template", err)
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

		result, err := core.Check(ctx, afero.NewOsFs(), manifest, args[2],
			core.WithClean(pkgregFlags.core.Clean),
			core.LocalWithLogger(rt.logger),
		)
		if err != nil {
			wrapFatalln("check folder", err)
			return
		}

		w := cmd.OutOrStdout()
		if f := pkgregFlags.core.Format; f != formatText {
			err = renderDocument(w, f, result)
		} else {
			items := make([]interface{}, 0, len(result.Missing)+len(result.Modified)+len(result.Extra))
			for _, problem := range []struct {
				name  string
				paths []string
			}{
				{name: "missing", paths: result.Missing},
				{name: "modified", paths: result.Modified},
				{name: "extra", paths: result.Extra},
			} {
				for _, pth := range problem.paths {
					items = append(items, checkLineEntry{Problem: problem.name, Path: pth})
				}
			}
			err = renderLines(w, t, items...)
		}
		if err != nil {
			wrapFatalln("render check", err)
			return
		}

		if !result.IsClean() {
			wrapFatalWithCodef(exitCodeCheckFailed, "folder %s does not match package %s version %d",
				args[2], manifest.PackageName, manifest.PackageVersion)
		}
	},
}

func init() {
	addCleanFlag(packageCheckCmd, "Report files and folders which are not part of the package")
	addFormatFlag(packageCheckCmd)
	addTemplateFlag(packageCheckCmd)

	packageCmd.AddCommand(packageCheckCmd)
}
