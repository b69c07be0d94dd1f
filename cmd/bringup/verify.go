package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/bringup/internal/config"
	"github.com/ShayCichocki/bringup/internal/exec"
	"github.com/ShayCichocki/bringup/internal/loop"
	"github.com/ShayCichocki/bringup/internal/runner"
	"github.com/ShayCichocki/bringup/internal/state"
	"github.com/ShayCichocki/bringup/pkg/models"
)

var (
	verifyMaxCycles int
	verifyNoTests   bool
	verifyNoFix     bool
	verifyHeadless  bool
	verifyDebug     bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify [directory]",
	Short: "Run, fix, and retry until the project comes up clean",
	Long: `Verify a project by running it, fixing what breaks, and retrying.

Each cycle runs the project, classifies the errors in its output,
applies fixes, and runs the test suite once execution is clean. The
loop stops on success, when the same errors repeat without progress,
when errors keep increasing, or when the cycle budget runs out.

The run history is saved to the project database (.bringup/state.db);
inspect it with 'bringup status'. Drop a file at .bringup/signals/stop
to abort a running verification from another terminal.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().IntVar(&verifyMaxCycles, "max-cycles", 0, "Override the cycle budget")
	verifyCmd.Flags().BoolVar(&verifyNoTests, "no-tests", false, "Skip the test step after clean execution")
	verifyCmd.Flags().BoolVar(&verifyNoFix, "no-fix", false, "Observe only, never apply fixes")
	verifyCmd.Flags().BoolVar(&verifyHeadless, "headless", false, "Run without TUI (headless mode)")
	verifyCmd.Flags().BoolVar(&verifyDebug, "debug", false, "Write a debug log to .bringup/logs/")
}

func runVerify(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if verifyMaxCycles > 0 {
		cfg.Loop.MaxCycles = verifyMaxCycles
	}
	if verifyNoTests {
		cfg.Loop.RunTests = false
	}
	if verifyNoFix {
		cfg.Loop.AutoFix = false
	}

	ctx, cancel := signalContext()
	defer cancel()

	cmdRunner := exec.NewRunner()
	pr := runner.NewProjectRunner(cmdRunner, cfg.Execution)
	fixer := newAutoFixer(cfg, cmdRunner)

	l := loop.New(pr, fixer, cfg)

	if verifyDebug {
		l.Logger = loop.NewDebugLoggerForProject(root)
		defer l.Logger.Close()
	}

	if sc, err := loop.NewStopController(root); err == nil {
		sc.ClearSignals()
		l.Stop = sc
		defer sc.Close()
	}

	var report *models.LoopReport
	if verifyHeadless {
		report = runVerifyHeadless(ctx, l, root)
	} else {
		report, err = runVerifyWithTUI(ctx, cancel, l, root, cfg.Loop.MaxCycles)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: display error: %v\n", err)
		}
		if report == nil {
			return fmt.Errorf("verification produced no report")
		}
	}

	fmt.Println(loop.Render(report))

	saveReport(root, report)

	if report.Status == models.LoopFailed {
		return fmt.Errorf("verification failed: %s", report.Summary)
	}
	return nil
}

// runVerifyHeadless runs the loop printing one line per cycle.
func runVerifyHeadless(ctx context.Context, l *loop.Loop, root string) *models.LoopReport {
	fmt.Printf("Verifying %s (max %d cycles)\n\n", root, l.Settings.MaxCycles)

	l.OnCycle = func(c models.CycleResult) {
		fmt.Printf("cycle %d: %s, %d error(s), %d fix(es) applied [%s]\n",
			c.Cycle, c.Status, len(c.ErrorsFound), c.FixesSuccessful, c.Duration.Round(time.Millisecond))
	}

	report := l.Run(ctx, root)
	fmt.Println()

	statusColor(report.Status).Printf("%s\n\n", report.Status)
	return report
}

// saveReport persists the run to the project database. History is
// best-effort: a failed save never fails the verification itself.
func saveReport(root string, report *models.LoopReport) {
	db, err := state.OpenProject(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open run history: %v\n", err)
		return
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not migrate run history: %v\n", err)
		return
	}

	if err := db.SaveReport(report); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save run history: %v\n", err)
		return
	}
	fmt.Printf("Run %s saved to %s\n", report.RunID, db.Path())
}
