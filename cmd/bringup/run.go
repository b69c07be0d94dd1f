package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/bringup/internal/config"
	"github.com/ShayCichocki/bringup/internal/detect"
	"github.com/ShayCichocki/bringup/internal/exec"
	"github.com/ShayCichocki/bringup/internal/runner"
	"github.com/ShayCichocki/bringup/pkg/models"
)

var (
	runCommand string
	runNoSetup bool
	runEnvs    []string
)

var runCmd = &cobra.Command{
	Use:   "run [directory]",
	Short: "Run a project once and report what happened",
	Long: `Run a project once and report the outcome.

The project type is detected from its files (package.json, go.mod,
manage.py, ...) unless --command overrides the run command. Dependencies
are installed first when the project has an install step; skip that with
--no-setup.

Examples:
  bringup run                      # Run the project in the current directory
  bringup run ./myapp              # Run a specific directory
  bringup run --command "npm start"
  bringup run --env PORT=4000 --no-setup`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProject,
}

func init() {
	runCmd.Flags().StringVar(&runCommand, "command", "", "Override the detected run command")
	runCmd.Flags().BoolVar(&runNoSetup, "no-setup", false, "Skip the dependency install step")
	runCmd.Flags().StringArrayVar(&runEnvs, "env", nil, "Environment override as KEY=VALUE (repeatable)")
}

func runProject(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	env, err := parseEnvFlags(runEnvs)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	pr := runner.NewProjectRunner(exec.NewRunner(), cfg.Execution)
	result := pr.Run(ctx, root, runner.RunOptions{
		Command: runCommand,
		Env:     env,
		Setup:   !runNoSetup,
	})

	fmt.Println(runner.Summary(result))

	if len(result.Errors) > 0 {
		fmt.Println()
		fmt.Println(detect.Report(result.Errors))
	}

	switch result.Status {
	case models.ExecutionSuccess:
		printStatus("✓", "Project ran cleanly", color.FgGreen)
		return nil
	case models.ExecutionCancelled:
		printStatus("⚠", "Run cancelled", color.FgYellow)
		return nil
	default:
		return fmt.Errorf("run finished with status %s", result.Status)
	}
}
