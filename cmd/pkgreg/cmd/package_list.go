package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var packageListCmd = &cobra.Command{
	Use:   "list",
	Short: "List packages",
	Long:  "List the names of all packages in the registry",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		rt := mustRuntime()
		if rt == nil {
			return
		}
		defer rt.close()

		names, err := rt.registry.GetNames(context.Background())
		if err != nil {
			wrapFatalln("list packages", err)
			return
		}

		if format := pkgregFlags.core.Format; format != formatText {
			if err = renderDocument(cmd.OutOrStdout(), format, names); err != nil {
				wrapFatalln("render packages", err)
			}
			return
		}

		t, err := lineTemplate(`{{.}}`)
		if err != nil {
			wrapFatalln("invalid template", err)
			return
		}
		items := make([]interface{}, 0, len(names))
		for _, name := range names {
			items = append(items, name)
		}
		if err = renderLines(cmd.OutOrStdout(), t, items...); err != nil {
			wrapFatalln("render packages", err)
		}
	},
}

func init() {
	addFormatFlag(packageListCmd)
	addTemplateFlag(packageListCmd)

	packageCmd.AddCommand(packageListCmd)
}
