package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/bringup/internal/config"
	"github.com/ShayCichocki/bringup/internal/exec"
	"github.com/ShayCichocki/bringup/internal/runner"
	"github.com/ShayCichocki/bringup/internal/testexec"
)

var (
	testCommand string
	testNoSetup bool
)

var testCmd = &cobra.Command{
	Use:   "test [directory]",
	Short: "Run a project's test suite",
	Long: `Run the project's test suite and report per-test results.

The test framework is detected from the project's files (pytest, jest,
vitest, go test, cargo, ...). Use --command to run a specific test
command instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTests,
}

func init() {
	testCmd.Flags().StringVar(&testCommand, "command", "", "Override the detected test command")
	testCmd.Flags().BoolVar(&testNoSetup, "no-setup", false, "Skip the dependency install step")
}

func runTests(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	pr := runner.NewProjectRunner(exec.NewRunner(), cfg.Execution)
	result := pr.RunTests(ctx, root, testCommand, !testNoSetup)

	fmt.Println(testexec.Report(result))

	if result.Success {
		printStatus("✓", "Tests passed", color.FgGreen)
		return nil
	}
	return fmt.Errorf("tests failed: %d failed, %d errored", result.Failed, result.Errors)
}
