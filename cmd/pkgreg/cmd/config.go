package cmd

import (
	units "github.com/docker/go-units"
	"github.com/oneconcern/pkgreg/pkg/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	defaultStore     = ".pkgreg"
	defaultCacheSize = 128
)

// CLIConfig describes the CLI configuration.
type CLIConfig struct {
	Store    string       `json:"store" yaml:"store" mapstructure:"store"`          // local folder holding the registry
	S3       S3Config     `json:"s3" yaml:"s3" mapstructure:"s3"`                   // S3 bucket holding the registry, supersedes the local store
	LogLevel string       `json:"loglevel" yaml:"loglevel" mapstructure:"loglevel"` // none, info, debug...
	Cache    CacheConfig  `json:"cache" yaml:"cache" mapstructure:"cache"`
	Limits   LimitsConfig `json:"limits" yaml:"limits" mapstructure:"limits"`
}

// S3Config locates a registry on S3 or on a S3-compatible API
type S3Config struct {
	Bucket   string `json:"bucket" yaml:"bucket" mapstructure:"bucket"`
	Region   string `json:"region,omitempty" yaml:"region,omitempty" mapstructure:"region"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" mapstructure:"endpoint"`
}

// CacheConfig sizes the in-memory cache of manifests
type CacheConfig struct {
	Size int `json:"size" yaml:"size" mapstructure:"size"`
}

// LimitsConfig constrains published packages. Sizes are human readable, e.g. "10MB".
type LimitsConfig struct {
	MaxFileSize    string `json:"maxFileSize,omitempty" yaml:"maxFileSize,omitempty" mapstructure:"maxFileSize"`
	MaxPackageSize string `json:"maxPackageSize,omitempty" yaml:"maxPackageSize,omitempty" mapstructure:"maxPackageSize"`
	MaxFilesCount  int    `json:"maxFilesCount,omitempty" yaml:"maxFilesCount,omitempty" mapstructure:"maxFilesCount"`
	MaxPathLength  int    `json:"maxPathLength,omitempty" yaml:"maxPathLength,omitempty" mapstructure:"maxPathLength"`
}

func setConfigDefaults() {
	viper.SetDefault("store", defaultStore)
	viper.SetDefault("loglevel", "info")
	viper.SetDefault("cache.size", defaultCacheSize)

	// keys unknown to viper are not looked up in the environment
	viper.SetDefault("limits.maxFileSize", "")
	viper.SetDefault("limits.maxPackageSize", "")
	viper.SetDefault("limits.maxFilesCount", 0)
	viper.SetDefault("limits.maxPathLength", 0)
}

func newConfig() (*CLIConfig, error) {
	var config CLIConfig
	err := viper.Unmarshal(&config)
	if err != nil {
		return nil, err
	}
	if _, err = config.Limits.toLimits(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c LimitsConfig) toLimits() (model.Limits, error) {
	limits := model.Limits{
		MaxFilesCount: c.MaxFilesCount,
		MaxPathLength: c.MaxPathLength,
	}
	var err error
	if c.MaxFileSize != "" {
		if limits.MaxFileSize, err = units.FromHumanSize(c.MaxFileSize); err != nil {
			return model.Limits{}, err
		}
	}
	if c.MaxPackageSize != "" {
		if limits.MaxPackageSize, err = units.FromHumanSize(c.MaxPackageSize); err != nil {
			return model.Limits{}, err
		}
	}
	return limits, nil
}

// configCmd represents the config related commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Commands to manage a config",
	Long: `Commands to manage the pkgreg CLI config.

Configuration for pkgreg is the common set of flags that are needed for most commands and do not change across runs,
such as the location of the registry.

The configuration is read from the file designated by $PKGREG_CONFIG, or from pkgreg.yaml found in
the current folder, $HOME/.pkgreg or /etc/pkgreg. Every key may be overridden by a PKGREG_ environment variable,
e.g. PKGREG_S3_BUCKET.`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
