package loop

import (
	"fmt"
	"strings"

	"github.com/ShayCichocki/bringup/pkg/models"
)

// summarize produces the human-readable account of a finished run.
func summarize(report *models.LoopReport) string {
	p := report.Progress

	var b strings.Builder
	switch report.Status {
	case models.LoopSuccess:
		fmt.Fprintf(&b, "Project came up clean after %d cycle(s).", p.TotalCycles)
	case models.LoopStuck:
		fmt.Fprintf(&b, "Stopped after %d cycle(s): the same errors kept recurring across %d consecutive cycles.",
			p.TotalCycles, stuckWindow)
	case models.LoopNeedsHumanHelp:
		fmt.Fprintf(&b, "Stopped after %d cycle(s): automated fixes are no longer making progress.", p.TotalCycles)
	case models.LoopMaxCyclesReached:
		fmt.Fprintf(&b, "Cycle budget of %d exhausted without a clean run.", p.TotalCycles)
	case models.LoopCancelled:
		fmt.Fprintf(&b, "Run cancelled after %d cycle(s).", p.TotalCycles)
	default:
		fmt.Fprintf(&b, "Run ended with status %s after %d cycle(s).", report.Status, p.TotalCycles)
	}

	fmt.Fprintf(&b, " Found %d error(s) total (%d unique), fixed %d.",
		p.TotalErrorsFound, p.UniqueErrorsSeen, p.TotalErrorsFixed)

	if p.Trend != models.TrendUnknown && report.Status != models.LoopSuccess {
		fmt.Fprintf(&b, " Error trend: %s.", p.Trend)
	}

	return b.String()
}

// recommend derives follow-up suggestions from the run history.
func recommend(report *models.LoopReport) []string {
	var recs []string

	switch report.Status {
	case models.LoopSuccess:
		return nil
	case models.LoopStuck:
		recs = append(recs, "The same errors recur every cycle; the applied fixes do not address the root cause. Review them manually.")
	case models.LoopNeedsHumanHelp:
		recs = append(recs, "Remaining errors exhausted their automated fix attempts and need manual attention.")
	case models.LoopMaxCyclesReached:
		recs = append(recs, "Raise loop.max_cycles or fix the remaining errors manually before rerunning.")
	}

	for _, rec := range categoryRecommendations(report) {
		recs = append(recs, rec)
	}

	if hasSkippedLowConfidence(report) {
		recs = append(recs, "Some fixes were generated but skipped for low confidence. Lower fixes.confidence_threshold to apply them, or apply them manually from the cycle history.")
	}
	if hasNoCollaboratorFailures(report) {
		recs = append(recs, "Code-level fixes need a collaborator. Configure anthropic.api_key to enable generated fixes.")
	}

	return recs
}

// categoryRecommendations suggests remediation per remaining error category.
func categoryRecommendations(report *models.LoopReport) []string {
	if report.FinalExecution == nil {
		return nil
	}

	byCategory := map[models.ErrorCategory]int{}
	for _, e := range report.FinalExecution.Errors {
		byCategory[e.Category]++
	}

	var recs []string
	if n := byCategory[models.CategoryDependency] + byCategory[models.CategoryImport]; n > 0 {
		recs = append(recs, fmt.Sprintf("%d dependency/import error(s) remain; check that the package manifest is complete and the registry is reachable.", n))
	}
	if n := byCategory[models.CategorySyntax]; n > 0 {
		recs = append(recs, fmt.Sprintf("%d syntax error(s) remain and need source-level fixes.", n))
	}
	if n := byCategory[models.CategoryConfiguration]; n > 0 {
		recs = append(recs, fmt.Sprintf("%d configuration error(s) remain; check environment files and settings.", n))
	}
	if n := byCategory[models.CategoryNetwork]; n > 0 {
		recs = append(recs, fmt.Sprintf("%d network error(s) remain; these usually point at external services rather than the project.", n))
	}
	return recs
}

func hasSkippedLowConfidence(report *models.LoopReport) bool {
	for _, cycle := range report.Cycles {
		for _, attempt := range cycle.FixesAttempted {
			if !attempt.Result.Success && strings.Contains(attempt.Result.Message, "below threshold") {
				return true
			}
		}
	}
	return false
}

func hasNoCollaboratorFailures(report *models.LoopReport) bool {
	for _, cycle := range report.Cycles {
		for _, attempt := range cycle.FixesAttempted {
			if strings.Contains(attempt.Result.Message, "no code-generation collaborator") {
				return true
			}
		}
	}
	return false
}

// Render formats a finished report for terminal display.
func Render(report *models.LoopReport) string {
	var b strings.Builder
	b.WriteString("# Verification Report\n\n")
	fmt.Fprintf(&b, "**Run ID:** %s\n", report.RunID)
	fmt.Fprintf(&b, "**Project:** %s\n", report.ProjectPath)
	fmt.Fprintf(&b, "**Status:** %s\n", report.Status)
	fmt.Fprintf(&b, "**Duration:** %.1fs\n", report.Duration.Seconds())
	fmt.Fprintf(&b, "**Cycles:** %d\n\n", report.Progress.TotalCycles)

	fmt.Fprintf(&b, "%s\n", report.Summary)

	if len(report.Cycles) > 0 {
		b.WriteString("\n## Cycles\n\n")
		b.WriteString("| Cycle | Status | Errors | Fixes OK | Fixes Failed | Duration |\n")
		b.WriteString("|-------|--------|--------|----------|--------------|----------|\n")
		for _, c := range report.Cycles {
			fmt.Fprintf(&b, "| %d | %s | %d | %d | %d | %.1fs |\n",
				c.Cycle, c.Status, len(c.ErrorsFound), c.FixesSuccessful, c.FixesFailed, c.Duration.Seconds())
		}
	}

	if len(report.Recommendations) > 0 {
		b.WriteString("\n## Recommendations\n\n")
		for _, rec := range report.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec)
		}
	}

	return b.String()
}
