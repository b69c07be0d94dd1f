package models

import "time"

// LoopStatus is the verification loop's state.
type LoopStatus string

const (
	// LoopNotStarted means Run has not been called.
	LoopNotStarted LoopStatus = "not_started"
	// LoopRunning means cycles are in progress.
	LoopRunning LoopStatus = "running"
	// LoopSuccess means a cycle completed with zero errors.
	LoopSuccess LoopStatus = "success"
	// LoopFailed means an unrecoverable loop-level failure occurred.
	LoopFailed LoopStatus = "failed"
	// LoopMaxCyclesReached means the cycle budget ran out.
	LoopMaxCyclesReached LoopStatus = "max_cycles_reached"
	// LoopStuck means three consecutive cycles produced the identical
	// set of error hashes.
	LoopStuck LoopStatus = "stuck_in_loop"
	// LoopNeedsHumanHelp means every remaining error is at its attempt cap.
	LoopNeedsHumanHelp LoopStatus = "needs_human_help"
	// LoopCancelled means the caller aborted the loop.
	LoopCancelled LoopStatus = "cancelled"
)

// Valid returns true if the status is a known value.
func (s LoopStatus) Valid() bool {
	switch s {
	case LoopNotStarted, LoopRunning, LoopSuccess, LoopFailed,
		LoopMaxCyclesReached, LoopStuck, LoopNeedsHumanHelp, LoopCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status ends a run.
func (s LoopStatus) Terminal() bool {
	return s != LoopNotStarted && s != LoopRunning
}

// ProgressTrend summarizes the error-count direction over recent cycles.
type ProgressTrend string

const (
	// TrendImproving means the error count is falling.
	TrendImproving ProgressTrend = "improving"
	// TrendRegressing means the error count is rising.
	TrendRegressing ProgressTrend = "regressing"
	// TrendStalled means the error count is flat.
	TrendStalled ProgressTrend = "stalled"
	// TrendUnknown means fewer than two cycles exist.
	TrendUnknown ProgressTrend = "unknown"
)

// CycleStatus tags how a single cycle ended.
type CycleStatus string

const (
	// CycleErrorsFound means execution failed and errors were collected.
	CycleErrorsFound CycleStatus = "errors_found"
	// CycleTestsFailed means execution succeeded but tests failed.
	CycleTestsFailed CycleStatus = "tests_failed"
	// CycleSuccess means execution (and tests, when enabled) passed.
	CycleSuccess CycleStatus = "success"
)

// CycleResult is the record of one run→test→fix cycle.
type CycleResult struct {
	// Cycle is the 1-based cycle ordinal.
	Cycle int `json:"cycle"`
	// Execution is the cycle's execution outcome.
	Execution *ExecutionResult `json:"execution,omitempty"`
	// Tests is the cycle's test outcome when tests ran.
	Tests *TestResult `json:"tests,omitempty"`
	// ErrorsFound are the distinct errors collected this cycle.
	ErrorsFound []DetectedError `json:"errors_found,omitempty"`
	// FixesAttempted are the attempts made this cycle, including
	// recorded-but-skipped low-confidence fixes.
	FixesAttempted []FixAttempt `json:"fixes_attempted,omitempty"`
	// FixesSuccessful counts successful attempts.
	FixesSuccessful int `json:"fixes_successful"`
	// FixesFailed counts failed attempts.
	FixesFailed int `json:"fixes_failed"`
	// Duration is the cycle's wall-clock time.
	Duration time.Duration `json:"duration"`
	// Status tags how the cycle ended.
	Status CycleStatus `json:"status"`
}

// LoopProgress tracks running totals across cycles. It is owned exclusively
// by the verification loop.
type LoopProgress struct {
	// TotalCycles counts completed cycles.
	TotalCycles int `json:"total_cycles"`
	// TotalErrorsFound counts every error across all cycles.
	TotalErrorsFound int `json:"total_errors_found"`
	// TotalErrorsFixed counts successful fixes.
	TotalErrorsFixed int `json:"total_errors_fixed"`
	// UniqueErrorsSeen counts first-time error hashes.
	UniqueErrorsSeen int `json:"unique_errors_seen"`
	// RepeatedErrors counts errors whose hash was seen before.
	RepeatedErrors int `json:"repeated_errors"`
	// Trend is derived from ErrorCountHistory.
	Trend ProgressTrend `json:"trend"`
	// ErrorCountHistory is the per-cycle error count, oldest first.
	ErrorCountHistory []int `json:"error_count_history,omitempty"`
}

// LoopReport is the final record of a verification run.
type LoopReport struct {
	// RunID uniquely identifies this run.
	RunID string `json:"run_id"`
	// ProjectPath is the verified project root.
	ProjectPath string `json:"project_path"`
	// Status is the terminal loop status.
	Status LoopStatus `json:"status"`
	// Progress holds the running totals.
	Progress LoopProgress `json:"progress"`
	// Cycles is the full cycle history.
	Cycles []CycleResult `json:"cycles,omitempty"`
	// StartTime is when the run began.
	StartTime time.Time `json:"start_time"`
	// EndTime is when the run ended.
	EndTime time.Time `json:"end_time"`
	// Duration is EndTime minus StartTime.
	Duration time.Duration `json:"duration"`
	// FinalExecution is the last execution outcome, if any.
	FinalExecution *ExecutionResult `json:"final_execution,omitempty"`
	// FinalTests is the last test outcome, if any.
	FinalTests *TestResult `json:"final_tests,omitempty"`
	// Summary is a human-readable account of the run.
	Summary string `json:"summary"`
	// Recommendations are follow-up suggestions derived from the history.
	Recommendations []string `json:"recommendations,omitempty"`
}
