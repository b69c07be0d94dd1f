package exec

import (
	"context"
	"fmt"
	"os"
	osexec "os/exec"
	"syscall"
	"time"
)

const (
	defaultTimeout        = 5 * time.Minute
	defaultGracePeriod    = 5 * time.Second
	defaultMaxOutputBytes = 500000

	// drainGrace bounds how long the output readers may keep flushing
	// after the process has been reaped. Grandchildren that inherited the
	// pipe and survived the group kill are abandoned past this window.
	drainGrace = 2 * time.Second
)

// Runner implements CommandRunner using os/exec. Every command runs in its
// own process group so that shell children (dev servers, watchers) die with
// the command.
type Runner struct {
	// DefaultTimeout applies when Command.Timeout is zero.
	DefaultTimeout time.Duration
	// DefaultGracePeriod applies when Command.GracePeriod is zero.
	DefaultGracePeriod time.Duration
	// DefaultMaxOutputBytes applies when Command.MaxOutputBytes is zero.
	DefaultMaxOutputBytes int
}

// NewRunner creates a Runner with default limits.
func NewRunner() *Runner {
	return &Runner{
		DefaultTimeout:        defaultTimeout,
		DefaultGracePeriod:    defaultGracePeriod,
		DefaultMaxOutputBytes: defaultMaxOutputBytes,
	}
}

// Run executes the command through "sh -c" in its own process group,
// draining stdout and stderr concurrently into bounded buffers. On timeout
// or context cancellation the whole group gets SIGTERM, a grace period,
// then SIGKILL.
func (r *Runner) Run(ctx context.Context, spec Command) Result {
	timeout := spec.Timeout
	if timeout <= 0 {
		timeout = r.DefaultTimeout
	}
	grace := spec.GracePeriod
	if grace <= 0 {
		grace = r.DefaultGracePeriod
	}
	maxBytes := spec.MaxOutputBytes
	if maxBytes <= 0 {
		maxBytes = r.DefaultMaxOutputBytes
	}

	cmd := osexec.Command("sh", "-c", spec.Command)
	cmd.Dir = spec.Dir
	cmd.Env = mergeEnv(os.Environ(), spec.Env)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	// os.Pipe rather than StdoutPipe: cmd.Wait must not own the drains,
	// or a surviving grandchild holding the write end would block the
	// reap indefinitely.
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return Result{ExitCode: -1, InfraError: fmt.Errorf("creating stdout pipe: %w", err)}
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		stdoutR.Close()
		stdoutW.Close()
		return Result{ExitCode: -1, InfraError: fmt.Errorf("creating stderr pipe: %w", err)}
	}
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	start := time.Now()
	if err := cmd.Start(); err != nil {
		stdoutR.Close()
		stdoutW.Close()
		stderrR.Close()
		stderrW.Close()
		return Result{ExitCode: -1, InfraError: fmt.Errorf("starting command: %w", err)}
	}

	// The parent's write ends must close now so the readers see EOF once
	// the group is dead.
	stdoutW.Close()
	stderrW.Close()

	stdout := newBoundedBuffer(maxBytes)
	stderr := newBoundedBuffer(maxBytes)
	stdoutDone := make(chan struct{})
	stderrDone := make(chan struct{})
	go drain(stdoutR, stdout, stdoutDone)
	go drain(stderrR, stderr, stderrDone)

	waitCh := make(chan error, 1)
	go func() { waitCh <- cmd.Wait() }()

	pgid := cmd.Process.Pid

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	res := Result{}
	var waitErr error
	select {
	case waitErr = <-waitCh:
	case <-timer.C:
		res.TimedOut = true
		killGroup(pgid, grace)
		waitErr = <-waitCh
	case <-ctx.Done():
		res.Cancelled = true
		killGroup(pgid, grace)
		waitErr = <-waitCh
	}
	res.Duration = time.Since(start)

	// Give the readers a short window to flush, then force EOF.
	flush := time.NewTimer(drainGrace)
	for _, done := range []chan struct{}{stdoutDone, stderrDone} {
		select {
		case <-done:
		case <-flush.C:
			stdoutR.Close()
			stderrR.Close()
			<-stdoutDone
			<-stderrDone
		}
	}
	flush.Stop()
	stdoutR.Close()
	stderrR.Close()

	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	res.Truncated = stdout.Truncated() || stderr.Truncated()
	res.ExitCode = exitCode(waitErr)
	return res
}

// mergeEnv layers overrides on top of the base environment, later writers
// winning for duplicate keys.
func mergeEnv(base []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return base
	}
	merged := make([]string, 0, len(base)+len(overrides))
	merged = append(merged, base...)
	for k, v := range overrides {
		merged = append(merged, k+"="+v)
	}
	return merged
}

// drain copies the reader into the buffer until EOF, then signals done.
func drain(r *os.File, buf *boundedBuffer, done chan<- struct{}) {
	defer close(done)
	chunk := make([]byte, 32*1024)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
		}
		if err != nil {
			return
		}
	}
}

// killGroup sends SIGTERM to the process group, waits out the grace period,
// then SIGKILLs anything still alive.
func killGroup(pgid int, grace time.Duration) {
	_ = syscall.Kill(-pgid, syscall.SIGTERM)

	deadline := time.After(grace)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-deadline:
			_ = syscall.Kill(-pgid, syscall.SIGKILL)
			return
		case <-tick.C:
			// Signal 0 probes for surviving group members.
			if err := syscall.Kill(-pgid, syscall.Signal(0)); err != nil {
				return
			}
		}
	}
}

// exitCode maps a Wait error to an exit code, -1 for killed processes.
func exitCode(waitErr error) int {
	if waitErr == nil {
		return 0
	}
	if exitErr, ok := waitErr.(*osexec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}

// Verify Runner implements CommandRunner at compile time.
var _ CommandRunner = (*Runner)(nil)
