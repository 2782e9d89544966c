package cmd

import (
	"bytes"
	"context"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/oneconcern/pkgreg/pkg/model"

	"github.com/spf13/cobra"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Commands to maintain the registry store",
	Long:  "Commands to maintain the storage backing the registry.",
}

var storeValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the registry store",
	Long: `Validate the whole registry store.

All manifests are validated, all the objects they refer to must exist, and all objects
are read back to check that their content matches their hash and size.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		rt := mustRuntime()
		if rt == nil {
			return
		}
		defer rt.close()

		stats, err := rt.registry.Validate(context.Background())
		if err != nil {
			wrapFatalln("store validation failed", err)
			return
		}

		if f := pkgregFlags.core.Format; f != formatText {
			if err = renderDocument(cmd.OutOrStdout(), f, stats); err != nil {
				wrapFatalln("render stats", err)
			}
			return
		}

		t, err := lineTemplate(`packages , {{.Packages}}
versions , {{.Versions}}
objects , {{.Objects}}
size , {{size .Size}}`)
		if err != nil {
			wrapFatalln("invalid template", err)
			return
		}
		if err = renderLines(cmd.OutOrStdout(), t, stats); err != nil {
			wrapFatalln("render stats", err)
		}
	},
}

var storeObjectsCmd = &cobra.Command{
	Use:   "objects",
	Short: "Write the inventory of the objects in the registry store",
	Long: `Write the inventory of all the objects held by the registry store.

The inventory is a binary stream: an 8 bytes big-endian length, followed by a JSON array of objects.
It may be passed to "pkgreg package publish --inventory", so that known objects are not uploaded again.

The inventory is written to stdout, unless --output is specified.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		rt := mustRuntime()
		if rt == nil {
			return
		}
		defer rt.close()

		objects, err := rt.registry.GetObjects(context.Background())
		if err != nil {
			wrapFatalln("list objects", err)
			return
		}

		var buf bytes.Buffer
		if err = model.WriteObjects(objects, &buf); err != nil {
			wrapFatalln("write objects inventory", err)
			return
		}

		target := pkgregFlags.output
		if target == "" || target == "-" {
			_, _ = cmd.OutOrStdout().Write(buf.Bytes())
			return
		}
		if err = os.MkdirAll(filepath.Dir(target), 0700); err != nil {
			wrapFatalln("create output folder", err)
			return
		}
		if err = ioutil.WriteFile(target, buf.Bytes(), 0600); err != nil {
			wrapFatalln("write objects inventory", err)
		}
	},
}

func init() {
	addFormatFlag(storeValidateCmd)
	addTemplateFlag(storeValidateCmd)
	addOutputFlag(storeObjectsCmd, "The file to write the inventory to, or - for stdout")

	storeCmd.AddCommand(storeValidateCmd)
	storeCmd.AddCommand(storeObjectsCmd)
	rootCmd.AddCommand(storeCmd)
}
