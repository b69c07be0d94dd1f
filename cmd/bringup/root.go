package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bringup",
	Short: "Run a project, find what breaks, fix it, retry",
	Long: `Bringup brings a project to a running state automatically.

It detects the project type, runs it, parses the output for errors,
applies fixes, and retries until the project comes up clean or no
further progress is possible.

Core capabilities:
- Detects project type and its install/run/test commands
- Classifies runtime and build errors from process output
- Applies deterministic fixes for known error categories
- Generates code fixes through the Anthropic API
- Tracks progress across cycles and stops when stuck`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
