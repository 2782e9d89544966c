package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Build information, set at link time with -ldflags "-X github.com/oneconcern/pkgreg/cmd/pkgreg/cmd.Version=..."
var (
	Version   string
	BuildDate string
	GitCommit string
	GitState  string
)

// VersionInfo describes the build of the CLI
type VersionInfo struct {
	Version   string `json:"version,omitempty" yaml:"version,omitempty"`
	BuildDate string `json:"buildDate,omitempty" yaml:"buildDate,omitempty"`
	GitCommit string `json:"gitCommit,omitempty" yaml:"gitCommit,omitempty"`
	GitState  string `json:"gitState,omitempty" yaml:"gitState,omitempty"`
}

// NewVersionInfo collects the build information. Unreleased builds report a "dev" version.
func NewVersionInfo() VersionInfo {
	ver := VersionInfo{
		Version:   "dev",
		BuildDate: BuildDate,
		GitCommit: GitCommit,
		GitState:  GitState,
	}
	if Version != "" {
		ver.Version = Version
		if ver.GitState == "" {
			ver.GitState = "clean"
		}
	}
	return ver
}

func (v VersionInfo) String() string {
	return fmt.Sprintf("Version: %s\nBuild date: %s\nCommit: %s\nWorking tree: %s\n",
		v.Version, v.BuildDate, v.GitCommit, v.GitState)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "prints the version of pkgreg",
	Long: `Prints the version of pkgreg. It includes the following components:
	* Semver (output of git describe --tags)
	* Build Date (date at which the binary was built)
	* Git Commit (the git commit hash this binary was built from)
	* Git State (when dirty there were uncommitted changes during the build)
`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		info := NewVersionInfo()
		if f := pkgregFlags.core.Format; f != formatText {
			if err := renderDocument(cmd.OutOrStdout(), f, info); err != nil {
				wrapFatalln("render version", err)
			}
			return
		}
		fmt.Fprint(cmd.OutOrStdout(), info.String())
	},
}

func init() {
	addFormatFlag(versionCmd)

	rootCmd.AddCommand(versionCmd)
}
