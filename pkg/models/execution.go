package models

import "time"

// ExecutionStatus is the lifecycle state of a project execution.
type ExecutionStatus string

const (
	// ExecutionPending means the execution has not started.
	ExecutionPending ExecutionStatus = "pending"
	// ExecutionSettingUp means dependency installation is in progress.
	ExecutionSettingUp ExecutionStatus = "setting_up"
	// ExecutionRunning means the run command is executing.
	ExecutionRunning ExecutionStatus = "running"
	// ExecutionSuccess means the command exited zero.
	ExecutionSuccess ExecutionStatus = "success"
	// ExecutionFailed means the command exited non-zero or setup failed.
	ExecutionFailed ExecutionStatus = "failed"
	// ExecutionTimeout means the command was killed at the timeout.
	ExecutionTimeout ExecutionStatus = "timeout"
	// ExecutionCancelled means the caller aborted the execution.
	ExecutionCancelled ExecutionStatus = "cancelled"
)

// Valid returns true if the status is a known value.
func (s ExecutionStatus) Valid() bool {
	switch s {
	case ExecutionPending, ExecutionSettingUp, ExecutionRunning,
		ExecutionSuccess, ExecutionFailed, ExecutionTimeout, ExecutionCancelled:
		return true
	default:
		return false
	}
}

// ExecutionResult is the outcome of one execution attempt. It is created
// fresh per attempt and immutable after return. Non-zero exits and timeouts
// are data here, not Go errors.
type ExecutionResult struct {
	// Status is the terminal execution state.
	Status ExecutionStatus `json:"status"`
	// ProjectKind is the handler that produced the profile used.
	ProjectKind string `json:"project_kind"`
	// Stdout is the captured standard output, size-capped.
	Stdout string `json:"stdout,omitempty"`
	// Stderr is the captured standard error, size-capped.
	Stderr string `json:"stderr,omitempty"`
	// ExitCode is the process exit code; -1 when the process was killed
	// or never started.
	ExitCode int `json:"exit_code"`
	// Duration is the wall-clock execution time.
	Duration time.Duration `json:"duration"`
	// Errors are the classified errors found in the captured output.
	Errors []DetectedError `json:"errors,omitempty"`
	// Tests holds test results when tests ran as part of this execution.
	Tests *TestResult `json:"tests,omitempty"`
	// SetupOutput is the captured install-step output, when setup ran.
	SetupOutput string `json:"setup_output,omitempty"`
	// Profile is the project profile the execution used.
	Profile *ProjectProfile `json:"profile,omitempty"`
	// Message carries a short human explanation for failed statuses.
	Message string `json:"message,omitempty"`
}
