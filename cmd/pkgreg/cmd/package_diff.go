// Copyright © 2018 One Concern

package cmd

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/oneconcern/pkgreg/pkg/core"
	"github.com/spf13/cobra"
)

// exit code when a compared version does not exist
const exitCodeMissingVersion = 2

const diffLineTemplate = `{{.Type}} , {{.Name}} , ` +
	`{{with .Existing}}{{size .Object.Size}} , {{.Object.Hash}}{{else}}- , -{{end}} , ` +
	`{{with .Additional}}{{size .Object.Size}} , {{.Object.Hash}}{{else}}- , -{{end}}`

var diffColors = map[core.DiffEntryType]*color.Color{
	core.DiffEntryTypeAdd: color.New(color.FgGreen),
	core.DiffEntryTypeDel: color.New(color.FgRed),
	core.DiffEntryTypeDif: color.New(color.FgYellow),
}

var packageDiffCmd = &cobra.Command{
	Use:   "diff <package> <version>",
	Short: "Diff two versions of a package",
	Long: `Diff two versions of a package, by default a version with the previous one.

Each line of output shows a file which has been added (A), deleted (D) or updated (U), with the size and hash
of its older and newer content:

	A , z.txt , - , - , 5 byte , 4b2a...
	U , y.txt , 20 byte , 7f3c... , 25 byte , 98e1...

When a version does not exist, the command reports which one and exits with code 2.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		version, err := parseVersion(args[1])
		if err != nil {
			wrapFatalln("invalid arguments", err)
			return
		}

		t, err := lineTemplate(diffLineTemplate)
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
		packageName := args[0]
		if version == 0 {
			if version, err = rt.registry.GetLatestVersion(ctx, packageName); err != nil {
				wrapFatalln("determine latest version", err)
				return
			}
		}

		comparison, err := core.Compare(ctx, rt.registry, packageName, version,
			core.Against(pkgregFlags.core.Against),
			core.CompareWithLogger(rt.logger),
			core.CompareWithMetrics(rt.metrics),
		)
		if err != nil {
			wrapFatalln("compare versions", err)
			return
		}

		w := cmd.OutOrStdout()
		if pkgregFlags.core.JSON {
			if err = renderDocument(w, formatJSON, comparison); err != nil {
				wrapFatalln("render diff", err)
				return
			}
		}

		if !comparison.IsComplete() {
			reportMissing(comparison)
			return
		}
		if pkgregFlags.core.JSON {
			return
		}

		for _, entry := range comparison.Diff.Entries() {
			var buf bytes.Buffer
			if err = t.Execute(&buf, entry); err != nil {
				wrapFatalln("executing template", err)
				return
			}
			_, _ = diffColors[entry.Type].Fprintln(w, buf.String())
		}
	},
}

func reportMissing(comparison *core.Comparison) {
	missing := make([]string, 0, 2)
	if comparison.OlderMissing {
		missing = append(missing, fmt.Sprintf("package %s version %d not found", comparison.PackageName, comparison.OlderVersion))
	}
	if comparison.NewerMissing {
		missing = append(missing, fmt.Sprintf("package %s version %d not found", comparison.PackageName, comparison.NewerVersion))
	}
	wrapFatalWithCodef(exitCodeMissingVersion, "%s", strings.Join(missing, "\n"))
}

func init() {
	addAgainstFlag(packageDiffCmd)
	addTemplateFlag(packageDiffCmd)
	addJSONFlag(packageDiffCmd)

	packageCmd.AddCommand(packageDiffCmd)
}
