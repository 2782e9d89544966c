package cmd

import "github.com/spf13/cobra"

var fileCmd = &cobra.Command{
	Use:   "file",
	Short: "Commands to retrieve package files",
	Long:  "Commands to retrieve the files of a package version.",
}

func init() {
	rootCmd.AddCommand(fileCmd)
}
