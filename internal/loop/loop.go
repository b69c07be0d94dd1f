package loop

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ShayCichocki/bringup/internal/config"
	"github.com/ShayCichocki/bringup/internal/fix"
	"github.com/ShayCichocki/bringup/internal/runner"
	"github.com/ShayCichocki/bringup/pkg/models"
)

// ProjectRunner is the execution surface the loop drives.
type ProjectRunner interface {
	Run(ctx context.Context, root string, opts runner.RunOptions) models.ExecutionResult
	RunTests(ctx context.Context, root, command string, setup bool) models.TestResult
}

// Fixer generates and applies repairs for detected errors.
type Fixer interface {
	GenerateFix(ctx context.Context, detected models.DetectedError, root string) (*models.GeneratedFix, error)
	ApplyFix(ctx context.Context, generated *models.GeneratedFix, root string) models.FixResult
}

// Loop runs verification cycles against a project: execute, detect, test,
// fix, repeat. Each Run call is independent; the Loop itself holds only
// configuration and collaborators.
type Loop struct {
	Runner   ProjectRunner
	Fixer    Fixer
	Settings config.LoopSettings
	Fixes    config.FixSettings
	Logger   *DebugLogger

	// Stop is an optional out-of-band abort channel checked between cycles.
	Stop *StopController
	// OnCycle is an optional observer invoked after every completed cycle.
	OnCycle func(models.CycleResult)
}

// New wires a Loop from its collaborators and settings.
func New(projRunner *runner.ProjectRunner, fixer *fix.AutoFixer, settings *config.Settings) *Loop {
	return &Loop{
		Runner:   projRunner,
		Fixer:    fixer,
		Settings: settings.Loop,
		Fixes:    settings.Fixes,
		Logger:   NopLogger(),
	}
}

// Run drives cycles until the project succeeds or a stop condition fires.
// It never returns an error: every outcome, including an internal panic, is
// reported through the returned LoopReport.
func (l *Loop) Run(ctx context.Context, projectPath string) (report *models.LoopReport) {
	abs, err := filepath.Abs(projectPath)
	if err == nil {
		projectPath = abs
	}

	report = &models.LoopReport{
		RunID:       uuid.NewString(),
		ProjectPath: projectPath,
		Status:      models.LoopRunning,
		StartTime:   time.Now(),
	}

	defer func() {
		if r := recover(); r != nil {
			l.Logger.Log("panic in verification loop: %v", r)
			report.Status = models.LoopFailed
			report.Summary = fmt.Sprintf("Internal failure: %v", r)
		}
		l.finalize(report)
	}()

	l.Logger.Log("run %s started for %s (max %d cycles)", report.RunID, projectPath, l.Settings.MaxCycles)

	tracker := newProgressTracker()
	attempts := make(map[string]int)

	for cycle := 1; cycle <= l.Settings.MaxCycles; cycle++ {
		if ctx.Err() != nil || l.Stop.ShouldStop() {
			l.Logger.Log("run cancelled before cycle %d", cycle)
			report.Status = models.LoopCancelled
			return report
		}

		result := l.runCycle(ctx, projectPath, cycle, tracker, attempts)
		report.Cycles = append(report.Cycles, result)
		report.Progress = tracker.progress
		if l.OnCycle != nil {
			l.OnCycle(result)
		}

		l.Logger.Log("cycle %d: status=%s errors=%d fixes=%d/%d trend=%s",
			cycle, result.Status, len(result.ErrorsFound),
			result.FixesSuccessful, len(result.FixesAttempted), tracker.progress.Trend)

		if result.Execution != nil && result.Execution.Status == models.ExecutionCancelled {
			report.Status = models.LoopCancelled
			return report
		}

		// Stop conditions, most decisive first.
		switch {
		case result.Status == models.CycleSuccess:
			report.Status = models.LoopSuccess
			return report
		case tracker.stuck():
			report.Status = models.LoopStuck
			return report
		case tracker.progress.Trend == models.TrendRegressing && cycle >= trendWindow:
			report.Status = models.LoopNeedsHumanHelp
			return report
		case allAtCap(result.ErrorsFound, attempts, l.Settings.MaxSameErrorAttempts):
			report.Status = models.LoopNeedsHumanHelp
			return report
		}
	}

	report.Status = models.LoopMaxCyclesReached
	return report
}

// runCycle performs one execute-test-fix pass.
func (l *Loop) runCycle(ctx context.Context, projectPath string, cycle int, tracker *progressTracker, attempts map[string]int) models.CycleResult {
	start := time.Now()

	// Setup runs once, on the first cycle; later cycles reuse the
	// environment fixes already applied.
	exec := l.Runner.Run(ctx, projectPath, runner.RunOptions{Setup: cycle == 1})

	result := models.CycleResult{
		Cycle:     cycle,
		Execution: &exec,
	}

	errors := append([]models.DetectedError(nil), exec.Errors...)

	if exec.Status == models.ExecutionSuccess && l.Settings.RunTests {
		tests := l.Runner.RunTests(ctx, projectPath, "", false)
		result.Tests = &tests
		if !tests.Success {
			errors = append(errors, testFailures(tests)...)
		}
	}

	result.ErrorsFound = errors
	tracker.recordCycle(errors)

	switch {
	case len(errors) == 0 && exec.Status == models.ExecutionSuccess:
		result.Status = models.CycleSuccess
	case exec.Status == models.ExecutionSuccess:
		result.Status = models.CycleTestsFailed
	default:
		result.Status = models.CycleErrorsFound
	}

	if result.Status != models.CycleSuccess && l.Settings.AutoFix {
		l.attemptFixes(ctx, projectPath, &result, tracker, attempts)
	}

	result.Duration = time.Since(start)
	return result
}

// attemptFixes works through the cycle's errors within each error's attempt
// budget. Low-confidence fixes are recorded but not applied; the attempt
// still counts, so an error that only ever yields weak fixes runs out of
// budget instead of looping forever.
func (l *Loop) attemptFixes(ctx context.Context, projectPath string, result *models.CycleResult, tracker *progressTracker, attempts map[string]int) {
	for _, detected := range result.ErrorsFound {
		h := detected.Hash()
		if attempts[h] >= l.Settings.MaxSameErrorAttempts {
			l.Logger.Log("error %s at attempt cap, skipping", h)
			continue
		}
		attempts[h]++

		attempt := models.FixAttempt{
			Timestamp: time.Now(),
			Error:     detected,
		}

		generated, err := l.Fixer.GenerateFix(ctx, detected, projectPath)
		switch {
		case err != nil:
			attempt.Result = models.FixResult{
				Message: fmt.Sprintf("no fix generated: %v", err),
			}
			result.FixesFailed++

		case generated.Confidence < l.Fixes.ConfidenceThreshold:
			attempt.Fix = generated
			attempt.Result = models.FixResult{
				Message: fmt.Sprintf("confidence %.2f below threshold %.2f; fix recorded but not applied",
					generated.Confidence, l.Fixes.ConfidenceThreshold),
			}
			result.FixesFailed++

		default:
			attempt.Fix = generated
			attempt.Result = l.Fixer.ApplyFix(ctx, generated, projectPath)
			if attempt.Result.Success {
				result.FixesSuccessful++
				tracker.recordFix()
			} else {
				result.FixesFailed++
			}
		}

		result.FixesAttempted = append(result.FixesAttempted, attempt)
	}
}

// testFailures converts a failed test run into detected errors so fixes and
// retry accounting treat them like any other failure.
func testFailures(tests models.TestResult) []models.DetectedError {
	var errors []models.DetectedError
	for _, suite := range tests.Suites {
		for _, tc := range suite.Tests {
			if tc.Status != models.TestFailed && tc.Status != models.TestErrored {
				continue
			}
			msg := fmt.Sprintf("Test failed: %s::%s", suite.Name, tc.Name)
			if tc.ErrorMessage != "" {
				msg += " - " + tc.ErrorMessage
			}
			errors = append(errors, models.DetectedError{
				Category: models.CategoryTestFailure,
				Message:  msg,
				Severity: models.SeverityError,
			})
		}
	}
	if len(errors) == 0 {
		errors = append(errors, models.DetectedError{
			Category: models.CategoryTestFailure,
			Message:  fmt.Sprintf("Test suite failed: %d of %d tests failing", tests.Failed, tests.Total),
			Severity: models.SeverityError,
		})
	}
	return errors
}

// allAtCap reports whether every error in the set has exhausted its fix
// attempt budget.
func allAtCap(errors []models.DetectedError, attempts map[string]int, maxAttempts int) bool {
	if len(errors) == 0 {
		return false
	}
	for _, e := range errors {
		if attempts[e.Hash()] < maxAttempts {
			return false
		}
	}
	return true
}

// finalize fills in the report's derived fields once the run is over.
func (l *Loop) finalize(report *models.LoopReport) {
	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)

	if n := len(report.Cycles); n > 0 {
		last := report.Cycles[n-1]
		report.FinalExecution = last.Execution
		report.FinalTests = last.Tests
	}

	if report.Summary == "" {
		report.Summary = summarize(report)
	}
	report.Recommendations = recommend(report)

	l.Logger.Log("run %s finished: %s after %d cycles in %s",
		report.RunID, report.Status, len(report.Cycles), report.Duration.Round(time.Millisecond))
}
