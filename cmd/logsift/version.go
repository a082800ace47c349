package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/logsift/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "logsift %s\ncommit: %s\nbuilt:  %s\n",
			version.Version, version.Commit, version.Date)
	},
}
