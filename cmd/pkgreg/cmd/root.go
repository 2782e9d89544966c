// Copyright © 2018 One Concern

package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pkgreg",
	Short: "pkgreg manages a registry of versioned packages",
	Long: `pkgreg manages a registry of versioned packages.

Each package is an ordered sequence of immutable, numbered versions.
Each version is described by a manifest listing its files, which content is stored once
in a content-addressable object store, either on the local file system or on S3.

pkgreg can publish new versions, retrieve manifests and files and compare versions.
`,
	SilenceUsage: true,
}

var config *CLIConfig

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		osExit(1)
	}
}

func init() {
	log.SetFlags(0)
	cobra.OnInitialize(initConfig)

	addLogLevelFlag(rootCmd)
	addStoreFlag(rootCmd)
	addS3Flags(rootCmd)
	addMetricsFlag(rootCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	setConfigDefaults()

	if cfg := os.Getenv("PKGREG_CONFIG"); cfg != "" {
		viper.SetConfigFile(cfg)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.pkgreg")
		viper.AddConfigPath("/etc/pkgreg")
		viper.SetConfigName("pkgreg")
	}

	viper.SetEnvPrefix("pkgreg")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Println("Using config file:", viper.ConfigFileUsed())
	}

	var err error
	config, err = newConfig()
	if err != nil {
		wrapFatalln("invalid configuration", err)
	}
}
