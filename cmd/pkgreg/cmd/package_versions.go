package cmd

import (
	"context"

	"github.com/oneconcern/pkgreg/pkg/format"
	"github.com/spf13/cobra"
)

type versionListEntry struct {
	Version   uint   `json:"version" yaml:"version"`
	Published string `json:"published" yaml:"published"`
	Files     int    `json:"files" yaml:"files"`
	Size      string `json:"size" yaml:"size"`
	Bytes     int64  `json:"bytes" yaml:"bytes"`
	Hash      string `json:"hash" yaml:"hash"`
}

var packageVersionsCmd = &cobra.Command{
	Use:   "versions <package>",
	Short: "List the versions of a package",
	Long: `List the published versions of a package, oldest first.

Each line shows the version number, the publication date, the number of files and the total size of the files.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rt := mustRuntime()
		if rt == nil {
			return
		}
		defer rt.close()

		ctx := context.Background()
		packageName := args[0]
		versions, err := rt.registry.GetVersions(ctx, packageName)
		if err != nil {
			wrapFatalln("list versions", err)
			return
		}

		entries := make([]versionListEntry, 0, len(versions))
		for _, version := range versions {
			manifest, err := rt.registry.GetManifest(ctx, packageName, version)
			if err != nil {
				wrapFatalln("get manifest", err)
				return
			}
			entries = append(entries, versionListEntry{
				Version:   manifest.PackageVersion,
				Published: format.Timestamp(manifest.Published),
				Files:     len(manifest.Files),
				Size:      format.Size(manifest.TotalSize()),
				Bytes:     manifest.TotalSize(),
				Hash:      manifest.Hash,
			})
		}

		if f := pkgregFlags.core.Format; f != formatText {
			if err = renderDocument(cmd.OutOrStdout(), f, entries); err != nil {
				wrapFatalln("render versions", err)
			}
			return
		}

		t, err := lineTemplate(`{{.Version}} , {{.Published}} , {{.Files}} , {{.Size}}`)
		if err != nil {
			wrapFatalln("invalid template", err)
			return
		}
		items := make([]interface{}, 0, len(entries))
		for _, entry := range entries {
			items = append(items, entry)
		}
		if err = renderLines(cmd.OutOrStdout(), t, items...); err != nil {
			wrapFatalln("render versions", err)
		}
	},
}

func init() {
	addFormatFlag(packageVersionsCmd)
	addTemplateFlag(packageVersionsCmd)

	packageCmd.AddCommand(packageVersionsCmd)
}
