package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/bringup/internal/config"
	"github.com/ShayCichocki/bringup/internal/detect"
	"github.com/ShayCichocki/bringup/internal/exec"
	"github.com/ShayCichocki/bringup/internal/project"
	"github.com/ShayCichocki/bringup/internal/runner"
	"github.com/ShayCichocki/bringup/pkg/models"
)

var analyzeLogFile string

var analyzeCmd = &cobra.Command{
	Use:   "analyze [directory]",
	Short: "Classify errors in project output",
	Long: `Run a project and classify every error found in its output, with
suggested fixes per error. With --log, a saved log file is analyzed
instead of running anything.

Examples:
  bringup analyze                 # Run and analyze the current directory
  bringup analyze --log crash.log # Analyze a saved log`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeLogFile, "log", "", "Analyze a saved log file instead of running the project")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}

	profile, err := project.NewDetector().Detect(root)
	if err != nil {
		return fmt.Errorf("detect project: %w", err)
	}
	fmt.Printf("Project: %s (%s)\n\n", root, profile.Kind)

	var errors []models.DetectedError

	if analyzeLogFile != "" {
		data, err := os.ReadFile(analyzeLogFile)
		if err != nil {
			return fmt.Errorf("read log file: %w", err)
		}
		d := detect.NewDetector().WithProjectPatterns(profile.ErrorPatterns)
		errors = d.Parse("", string(data))
	} else {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		ctx, cancel := signalContext()
		defer cancel()

		pr := runner.NewProjectRunner(exec.NewRunner(), cfg.Execution)
		result := pr.Run(ctx, root, runner.RunOptions{Profile: &profile, Setup: true})
		errors = result.Errors
	}

	if len(errors) == 0 {
		printStatus("✓", "No errors detected", color.FgGreen)
		return nil
	}

	fmt.Println(detect.Report(errors))

	fmt.Println("Suggested fixes:")
	for _, e := range errors {
		fmt.Printf("  [%s] %s\n", e.Category, e.Message)
		for _, suggestion := range detect.SuggestFixes(e) {
			fmt.Printf("    - %s\n", suggestion)
		}
	}

	return nil
}
