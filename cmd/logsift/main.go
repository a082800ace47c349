package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/logsift/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "logsift",
	Short: "Log search engine for named text diagnostics",
	Long: `logsift finds matching lines in named text diagnostics such as crash
logs and system logs, using substring and regex rules. It runs as a one-shot
search over files and directories, or as an HTTP daemon serving diagnostics
from directories and Redis.`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
