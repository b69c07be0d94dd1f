package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/bringup/internal/state"
)

var (
	statusAll   bool
	statusLimit int
	statusRunID string
	statusPurge time.Duration
)

var statusCmd = &cobra.Command{
	Use:   "status [directory]",
	Short: "Show verification run history",
	Long: `Display recent verification runs for a project.

Shows per run:
  - Terminal status and error trend
  - Cycle count and errors found/fixed
  - When the run happened and how long it took

Use --run <id> to print the full cycle breakdown of one run, or --all
to list runs across every project in the global database. --purge
deletes runs older than the given duration before listing.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusAll, "all", false, "List runs across all projects (global database)")
	statusCmd.Flags().IntVar(&statusLimit, "limit", 10, "Maximum runs to list")
	statusCmd.Flags().StringVar(&statusRunID, "run", "", "Show the cycle breakdown for one run ID")
	statusCmd.Flags().DurationVar(&statusPurge, "purge", 0, "Delete runs older than this duration (e.g. 720h)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}

	dbPath := state.ProjectDBPath(root)
	if statusAll {
		dbPath = state.GlobalDBPath()
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("No run history yet. Run 'bringup verify' to start.")
		return nil
	}

	db, err := state.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	if statusPurge > 0 {
		deleted, err := db.PurgeOldRuns(statusPurge)
		if err != nil {
			return fmt.Errorf("purge old runs: %w", err)
		}
		fmt.Printf("Purged %d run(s) older than %s\n", deleted, statusPurge)
	}

	if statusRunID != "" {
		return displayRun(db, statusRunID)
	}

	var runs []state.RunRecord
	if statusAll {
		runs, err = db.RecentRuns(statusLimit)
	} else {
		runs, err = db.RunsForProject(root, statusLimit)
	}
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No run history yet. Run 'bringup verify' to start.")
		return nil
	}

	fmt.Println("Recent Runs:")
	for _, r := range runs {
		ago := formatDuration(time.Since(r.StartedAt))
		statusColor(r.Status).Printf("  %-18s", r.Status)
		fmt.Printf(" %s  %d cycle(s), %d error(s), %d fixed, trend %s (%s ago, took %s)\n",
			r.ID, r.Cycles, r.ErrorsFound, r.ErrorsFixed, r.Trend, ago, formatDuration(r.Duration))
		if statusAll {
			fmt.Printf("    %s\n", r.ProjectPath)
		}
	}
	return nil
}

// displayRun prints the per-cycle breakdown of one run.
func displayRun(db *state.DB, runID string) error {
	report, err := db.GetReport(runID)
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	if report == nil {
		return fmt.Errorf("run %s not found", runID)
	}

	fmt.Printf("Run %s (%s)\n", report.RunID, report.ProjectPath)
	statusColor(report.Status).Printf("  Status: %s\n", report.Status)
	fmt.Printf("  Started: %s\n", report.StartTime.Format(time.RFC1123))
	fmt.Printf("  Duration: %s\n", formatDuration(report.Duration))
	fmt.Printf("  Summary: %s\n\n", report.Summary)

	cycles, err := db.CycleRows(runID)
	if err != nil {
		return fmt.Errorf("list cycles: %w", err)
	}
	for _, c := range cycles {
		fmt.Printf("  cycle %d: %s, %d error(s), fixes %d/%d, %s\n",
			c.Cycle, c.Status, c.Errors, c.FixesSucceeded, c.FixesSucceeded+c.FixesFailed,
			formatDuration(c.Duration))
	}

	for _, rec := range report.Recommendations {
		fmt.Printf("\n  → %s\n", rec)
	}
	return nil
}
