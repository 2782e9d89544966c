// Copyright © 2018 One Concern

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type flagsT struct {
	root struct {
		logLevel string
		store    string
		metrics  bool
		s3       struct {
			bucket   string
			region   string
			endpoint string
		}
	}
	core struct {
		Template string
		Format   string
		JSON     bool
		Against  uint
		Clean    bool
	}
	output    string
	inventory string
}

var pkgregFlags = flagsT{}

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// bindFlag lets a flag override a config key
func bindFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		logFatalln(err)
	}
}

func addLogLevelFlag(cmd *cobra.Command) string {
	logLevel := "loglevel"
	cmd.PersistentFlags().StringVar(&pkgregFlags.root.logLevel, logLevel, "info", "The logging level: none, info, debug")
	bindFlag("loglevel", cmd.PersistentFlags().Lookup(logLevel))
	return logLevel
}

func addStoreFlag(cmd *cobra.Command) string {
	store := "store"
	cmd.PersistentFlags().StringVar(&pkgregFlags.root.store, store, defaultStore, "The local folder holding the registry")
	bindFlag("store", cmd.PersistentFlags().Lookup(store))
	return store
}

func addS3Flags(cmd *cobra.Command) []string {
	bucket, region, endpoint := "s3-bucket", "s3-region", "s3-endpoint"
	cmd.PersistentFlags().StringVar(&pkgregFlags.root.s3.bucket, bucket, "",
		"The S3 bucket holding the registry. When set, the local store is not used")
	cmd.PersistentFlags().StringVar(&pkgregFlags.root.s3.region, region, "", "The AWS region of the S3 bucket")
	cmd.PersistentFlags().StringVar(&pkgregFlags.root.s3.endpoint, endpoint, "",
		"The endpoint of a S3-compatible API, e.g. http://localhost:9000")
	bindFlag("s3.bucket", cmd.PersistentFlags().Lookup(bucket))
	bindFlag("s3.region", cmd.PersistentFlags().Lookup(region))
	bindFlag("s3.endpoint", cmd.PersistentFlags().Lookup(endpoint))
	return []string{bucket, region, endpoint}
}

func addMetricsFlag(cmd *cobra.Command) string {
	enabled := "metrics"
	cmd.PersistentFlags().BoolVar(&pkgregFlags.root.metrics, enabled, false,
		"Log the metrics collected while running the command")
	return enabled
}

func addTemplateFlag(cmd *cobra.Command) string {
	template := "template"
	cmd.Flags().StringVar(&pkgregFlags.core.Template, template, "", "A go template to render each line of output")
	return template
}

func addFormatFlag(cmd *cobra.Command) string {
	format := "format"
	cmd.Flags().StringVar(&pkgregFlags.core.Format, format, formatText, "The output format: text, json or yaml")
	return format
}

func addJSONFlag(cmd *cobra.Command) string {
	j := "json"
	cmd.Flags().BoolVar(&pkgregFlags.core.JSON, j, false, "Render the diff as a JSON document")
	return j
}

func addAgainstFlag(cmd *cobra.Command) string {
	against := "against"
	cmd.Flags().UintVar(&pkgregFlags.core.Against, against, 0,
		"The version to compare with. Defaults to the previous version")
	return against
}

func addOutputFlag(cmd *cobra.Command, usage string) string {
	output := "output"
	cmd.Flags().StringVarP(&pkgregFlags.output, output, "o", "", usage)
	return output
}

func addCleanFlag(cmd *cobra.Command, usage string) string {
	clean := "clean"
	cmd.Flags().BoolVar(&pkgregFlags.core.Clean, clean, false, usage)
	return clean
}

func addInventoryFlag(cmd *cobra.Command) string {
	inventory := "inventory"
	cmd.Flags().StringVar(&pkgregFlags.inventory, inventory, "",
		"An objects inventory, as written by store objects. Listed objects are not uploaded again")
	return inventory
}
