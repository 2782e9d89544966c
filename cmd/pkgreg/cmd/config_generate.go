package cmd

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

var configGen = &cobra.Command{
	Use:   "generate",
	Short: "Generate a config",
	Long: `Generate a config file from the current settings and flags.

The config file is written to $HOME/.pkgreg/pkgreg.yaml, unless --output is specified.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		o, err := yaml.Marshal(config)
		if err != nil {
			wrapFatalln("serialize config to yaml", err)
			return
		}

		target := pkgregFlags.output
		if target == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				wrapFatalln("could not get home directory for user", err)
				return
			}
			target = filepath.Join(home, ".pkgreg", "pkgreg.yaml")
		}
		if target == "-" {
			_, _ = cmd.OutOrStdout().Write(o)
			return
		}

		if err = os.MkdirAll(filepath.Dir(target), 0700); err != nil {
			wrapFatalln("create config folder", err)
			return
		}
		if err = ioutil.WriteFile(target, o, 0600); err != nil {
			wrapFatalln("write config file", err)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "config written to %s\n", target)
	},
}

func init() {
	addOutputFlag(configGen, "The config file to write, or - for stdout")

	configCmd.AddCommand(configGen)
}
