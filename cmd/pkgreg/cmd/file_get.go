package cmd

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/oneconcern/pkgreg/pkg/core"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fileGetCmd = &cobra.Command{
	Use:   "get <package> <version> <path>",
	Short: "Get a file from a package version",
	Long: `Get the content of a single file from a package version, which may be "latest".

The content is written to stdout, unless --output is specified.`,
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
		packageName := args[0]
		if version == 0 {
			if version, err = rt.registry.GetLatestVersion(ctx, packageName); err != nil {
				wrapFatalln("determine latest version", err)
				return
			}
		}

		file, content, err := core.ReadFile(ctx, rt.registry, rt.registry, packageName, version, args[2])
		if err != nil {
			wrapFatalln("get file", err)
			return
		}

		target := pkgregFlags.output
		if target == "" || target == "-" {
			_, _ = cmd.OutOrStdout().Write(content)
			return
		}
		if err = os.MkdirAll(filepath.Dir(target), 0700); err != nil {
			wrapFatalln("create output folder", err)
			return
		}
		if err = ioutil.WriteFile(target, content, 0600); err != nil {
			wrapFatalln("write file", err)
			return
		}
		rt.logger.Info("file written", zap.String("path", file.Path), zap.String("output", target), zap.Int64("size", file.Object.Size))
	},
}

func init() {
	addOutputFlag(fileGetCmd, "The file to write, or - for stdout")

	fileCmd.AddCommand(fileGetCmd)
}
