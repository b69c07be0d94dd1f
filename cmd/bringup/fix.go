package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/bringup/internal/config"
	"github.com/ShayCichocki/bringup/internal/exec"
	"github.com/ShayCichocki/bringup/internal/fix"
	"github.com/ShayCichocki/bringup/internal/runner"
)

var (
	fixDryRun  bool
	fixNoSetup bool
)

var fixCmd = &cobra.Command{
	Use:   "fix [directory]",
	Short: "Run a project once and fix what broke",
	Long: `Run a project, classify the errors found in its output, and apply
one fix per error. Deterministic fixes (missing dependencies, ports,
permissions, config repairs) apply directly; code fixes come from the
Anthropic API when an API key is configured.

Fixes below the configured confidence threshold are reported but not
applied. Use --dry-run to see every candidate fix without touching
anything. For the full run-fix-retry loop, use 'bringup verify'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFix,
}

func init() {
	fixCmd.Flags().BoolVar(&fixDryRun, "dry-run", false, "Generate fixes without applying them")
	fixCmd.Flags().BoolVar(&fixNoSetup, "no-setup", false, "Skip the dependency install step")
}

func runFix(cmd *cobra.Command, args []string) error {
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

	cmdRunner := exec.NewRunner()
	pr := runner.NewProjectRunner(cmdRunner, cfg.Execution)

	fmt.Printf("Running %s...\n", root)
	result := pr.Run(ctx, root, runner.RunOptions{Setup: !fixNoSetup})

	if len(result.Errors) == 0 {
		printStatus("✓", fmt.Sprintf("Nothing to fix, run finished with status %s", result.Status), color.FgGreen)
		return nil
	}

	fmt.Printf("Found %d error(s)\n\n", len(result.Errors))

	fixer := newAutoFixer(cfg, cmdRunner)
	applied := 0
	skipped := 0

	for _, detected := range result.Errors {
		fmt.Printf("[%s] %s\n", detected.Category, detected.Message)

		generated, err := fixer.GenerateFix(ctx, detected, root)
		if err != nil {
			if errors.Is(err, fix.ErrNoCollaborator) {
				printStatus("⚠", "needs a code fix, but no collaborator is configured", color.FgYellow)
			} else {
				printStatus("✗", fmt.Sprintf("no fix generated: %v", err), color.FgRed)
			}
			skipped++
			continue
		}

		fmt.Printf("  fix: %s (confidence %.2f)\n", generated.Rationale, generated.Confidence)

		if fixDryRun {
			for path := range generated.FileChanges {
				fmt.Printf("  would rewrite %s\n", path)
			}
			for _, command := range generated.Commands {
				fmt.Printf("  would run %s\n", command)
			}
			continue
		}

		if generated.Confidence < cfg.Fixes.ConfidenceThreshold {
			printStatus("⚠", fmt.Sprintf("confidence %.2f below threshold %.2f, not applied",
				generated.Confidence, cfg.Fixes.ConfidenceThreshold), color.FgYellow)
			skipped++
			continue
		}

		fixResult := fixer.ApplyFix(ctx, generated, root)
		if fixResult.Success {
			printStatus("✓", fixResult.Message, color.FgGreen)
			applied++
		} else {
			printStatus("✗", fixResult.Message, color.FgRed)
			skipped++
		}
	}

	if fixDryRun {
		return nil
	}

	fmt.Printf("\nApplied %d fix(es), %d left unresolved.\n", applied, skipped)
	if applied > 0 {
		fmt.Println("Run 'bringup run' to check the result, or 'bringup verify' to loop until clean.")
	}
	return nil
}
