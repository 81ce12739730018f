package cmd

import (
	"fmt"
	"runtime"

	"lobbyctl/internal/cli"

	"github.com/spf13/cobra"
)

// versionInfo is the structured output of the version command.
type versionInfo struct {
	Version   string `json:"version" yaml:"version"`
	GoVersion string `json:"goVersion" yaml:"goVersion"`
	Platform  string `json:"platform" yaml:"platform"`
}

func currentVersionInfo() versionInfo {
	return versionInfo{
		Version:   rootCmd.Version,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// newVersionCmd creates the command printing the build version.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of lobbyctl",
		Long:  `Print the version of lobbyctl together with the Go version and platform it was built for.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := currentVersionInfo()
			p := &cli.Printer{Out: cmd.OutOrStdout(), Format: cli.OutputFormat(outputFormat)}
			if ok, err := p.Data(info); ok {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "lobbyctl version %s (%s, %s)\n", info.Version, info.GoVersion, info.Platform)
			return err
		},
	}
}
