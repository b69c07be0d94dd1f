// Package exec runs project commands in their own process group with
// bounded output capture and timeout/kill semantics.
package exec

import (
	"context"
	"time"
)

// Command describes a single shell command execution.
type Command struct {
	// Command is the shell command string, run through "sh -c".
	Command string
	// Dir is the working directory; empty means the caller's.
	Dir string
	// Env holds environment overrides merged over the parent environment.
	Env map[string]string
	// Timeout bounds wall-clock execution; zero uses the runner default.
	Timeout time.Duration
	// GracePeriod is the window between SIGTERM and SIGKILL; zero uses
	// the runner default.
	GracePeriod time.Duration
	// MaxOutputBytes caps each captured stream; zero uses the runner
	// default.
	MaxOutputBytes int
}

// Result is the outcome of one command execution. Non-zero exits, timeouts,
// and cancellation are data, not Go errors; only spawn-level failures
// (shell missing, fork denied) set InfraError.
type Result struct {
	// Stdout is the captured standard output, truncated at the byte cap.
	Stdout string
	// Stderr is the captured standard error, truncated at the byte cap.
	Stderr string
	// ExitCode is the process exit code; -1 when killed or never started.
	ExitCode int
	// Duration is wall-clock time from start to reap.
	Duration time.Duration
	// TimedOut is true when the timeout triggered the kill path.
	TimedOut bool
	// Cancelled is true when the caller's context triggered the kill path.
	Cancelled bool
	// Truncated is true when either stream hit the output cap.
	Truncated bool
	// InfraError is set only when the process could not be spawned.
	InfraError error
}

// Output returns stdout and stderr joined, for callers that scan both.
func (r Result) Output() string {
	if r.Stderr == "" {
		return r.Stdout
	}
	if r.Stdout == "" {
		return r.Stderr
	}
	return r.Stdout + "\n" + r.Stderr
}

// CommandRunner is the execution boundary. The concrete Runner spawns real
// processes; tests substitute fakes.
type CommandRunner interface {
	// Run executes one command and always returns a Result. The child's
	// process group never outlives the call.
	Run(ctx context.Context, cmd Command) Result
}
