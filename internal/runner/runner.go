// Package runner executes a project end to end: detect its kind, install
// dependencies, run it, and turn the output into a structured result.
package runner

import (
	"context"
	"fmt"
	"strings"

	"github.com/ShayCichocki/bringup/internal/config"
	"github.com/ShayCichocki/bringup/internal/detect"
	"github.com/ShayCichocki/bringup/internal/exec"
	"github.com/ShayCichocki/bringup/internal/project"
	"github.com/ShayCichocki/bringup/internal/testexec"
	"github.com/ShayCichocki/bringup/pkg/models"
)

// errorLogSizeLimit bounds how much output tail is fed to error detection.
const errorLogSizeLimit = 100000

// ProjectRunner runs one project per call. It holds no per-run state;
// retries and cycles are the verification loop's concern.
type ProjectRunner struct {
	Detector *project.Detector
	Runner   exec.CommandRunner
	Tests    *testexec.Executor
	Settings config.ExecutionSettings
}

// NewProjectRunner wires a ProjectRunner from the shared command runner and
// execution settings.
func NewProjectRunner(cmdRunner exec.CommandRunner, settings config.ExecutionSettings) *ProjectRunner {
	return &ProjectRunner{
		Detector: project.NewDetector(),
		Runner:   cmdRunner,
		Tests:    testexec.NewExecutor(cmdRunner, settings.TestTimeout),
		Settings: settings,
	}
}

// RunOptions controls one execution.
type RunOptions struct {
	// Command overrides the profile's run command.
	Command string
	// Profile skips detection when the caller already has one.
	Profile *models.ProjectProfile
	// Env holds caller environment overrides, layered over the profile's.
	Env map[string]string
	// Setup runs the install step before executing.
	Setup bool
}

// Run executes the project once and returns the structured result. The
// command runs in the project's environment; its output feeds error
// detection. Non-zero exits and detected errors are data on the result,
// never Go errors.
func (r *ProjectRunner) Run(ctx context.Context, root string, opts RunOptions) models.ExecutionResult {
	profile, err := r.profileFor(root, opts.Profile)
	if err != nil {
		return models.ExecutionResult{
			Status:  models.ExecutionFailed,
			Message: err.Error(),
		}
	}

	result := models.ExecutionResult{
		Status:      models.ExecutionPending,
		ProjectKind: profile.Kind,
		Profile:     &profile,
		ExitCode:    -1,
	}

	env := mergeEnv(profile.Environment, opts.Env)

	if opts.Setup && profile.InstallCommand != "" {
		result.Status = models.ExecutionSettingUp
		ok, setupOutput := r.Setup(ctx, profile, opts.Env)
		result.SetupOutput = setupOutput
		if !ok {
			result.Status = models.ExecutionFailed
			result.Message = "Setup failed"
			result.Errors = r.DetectErrors(profile, setupOutput, "")
			return result
		}
	}

	runCommand := opts.Command
	if runCommand == "" {
		runCommand = profile.RunCommand
	}
	if runCommand == "" {
		runCommand = profile.DevCommand
	}
	if runCommand == "" {
		result.Status = models.ExecutionFailed
		result.Message = "No run command available"
		return result
	}

	result.Status = models.ExecutionRunning
	res := r.Runner.Run(ctx, exec.Command{
		Command:        runCommand,
		Dir:            profile.RootPath,
		Env:            env,
		Timeout:        r.Settings.Timeout,
		GracePeriod:    r.Settings.GracePeriod,
		MaxOutputBytes: r.Settings.MaxOutputBytes,
	})

	result.Stdout = res.Stdout
	result.Stderr = res.Stderr
	result.ExitCode = res.ExitCode
	result.Duration = res.Duration

	switch {
	case res.InfraError != nil:
		result.Status = models.ExecutionFailed
		result.Message = fmt.Sprintf("Execution error: %v", res.InfraError)
	case res.TimedOut:
		result.Status = models.ExecutionTimeout
		result.Stderr += fmt.Sprintf("\nProcess timed out after %s", r.Settings.Timeout)
	case res.Cancelled:
		result.Status = models.ExecutionCancelled
		result.Message = "Execution cancelled"
	case res.ExitCode == 0:
		result.Status = models.ExecutionSuccess
	default:
		result.Status = models.ExecutionFailed
	}

	result.Errors = r.DetectErrors(profile, result.Stdout, result.Stderr)

	// A clean exit with critical errors in the output is still a failure:
	// dev servers often stay at exit 0 while logging crashes.
	if result.Status == models.ExecutionSuccess {
		for _, e := range result.Errors {
			if e.Severity == models.SeverityError {
				result.Status = models.ExecutionFailed
				break
			}
		}
	}

	return result
}

// Setup installs the project's dependencies. It returns success and the
// combined output.
func (r *ProjectRunner) Setup(ctx context.Context, profile models.ProjectProfile, env map[string]string) (bool, string) {
	if profile.InstallCommand == "" {
		return true, "No installation required"
	}

	res := r.Runner.Run(ctx, exec.Command{
		Command:        profile.InstallCommand,
		Dir:            profile.RootPath,
		Env:            mergeEnv(profile.Environment, env),
		Timeout:        r.Settings.SetupTimeout,
		GracePeriod:    r.Settings.GracePeriod,
		MaxOutputBytes: r.Settings.MaxOutputBytes,
	})

	output := res.Output()
	switch {
	case res.InfraError != nil:
		return false, fmt.Sprintf("Setup error: %v", res.InfraError)
	case res.TimedOut:
		return false, fmt.Sprintf("Setup timed out after %s", r.Settings.SetupTimeout)
	case res.ExitCode != 0:
		return false, fmt.Sprintf("Setup failed (exit code %d):\n%s", res.ExitCode, output)
	}
	return true, output
}

// RunTests runs the project's test suite, optionally installing first.
func (r *ProjectRunner) RunTests(ctx context.Context, root, command string, setup bool) models.TestResult {
	profile, err := r.profileFor(root, nil)
	if err != nil {
		return models.TestResult{
			Framework: models.FrameworkUnknown,
			RawOutput: err.Error(),
			ExitCode:  -1,
		}
	}

	if setup {
		if ok, _ := r.Setup(ctx, profile, nil); !ok {
			return models.TestResult{
				Framework: testexec.DetectFramework(root),
				RawOutput: "Setup failed before tests",
				ExitCode:  -1,
			}
		}
	}

	return r.Tests.Run(ctx, profile, command, "")
}

// DetectErrors feeds the output tail to error detection with the profile's
// own patterns layered in.
func (r *ProjectRunner) DetectErrors(profile models.ProjectProfile, stdout, stderr string) []models.DetectedError {
	if len(stdout) > errorLogSizeLimit {
		stdout = stdout[len(stdout)-errorLogSizeLimit:]
	}
	if len(stderr) > errorLogSizeLimit {
		stderr = stderr[len(stderr)-errorLogSizeLimit:]
	}
	d := detect.NewDetector().WithProjectPatterns(profile.ErrorPatterns)
	return d.Parse(stdout, stderr)
}

func (r *ProjectRunner) profileFor(root string, given *models.ProjectProfile) (models.ProjectProfile, error) {
	if given != nil {
		return *given, nil
	}
	return r.Detector.Detect(root)
}

func mergeEnv(base, overrides map[string]string) map[string]string {
	if len(base) == 0 && len(overrides) == 0 {
		return nil
	}
	merged := make(map[string]string, len(base)+len(overrides))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

// Summary renders an execution result as a markdown report.
func Summary(result models.ExecutionResult) string {
	var b strings.Builder
	b.WriteString("# Project Execution Summary\n\n")
	fmt.Fprintf(&b, "**Project Type:** %s\n", result.ProjectKind)
	fmt.Fprintf(&b, "**Status:** %s\n", result.Status)
	fmt.Fprintf(&b, "**Duration:** %.2fs\n", result.Duration.Seconds())
	fmt.Fprintf(&b, "**Exit Code:** %d\n", result.ExitCode)
	if result.Message != "" {
		fmt.Fprintf(&b, "**Message:** %s\n", result.Message)
	}

	if len(result.Errors) > 0 {
		b.WriteString("\n## Errors Detected\n\n")
		b.WriteString(detect.Report(result.Errors))
	}
	if result.Tests != nil {
		b.WriteString("\n## Test Results\n\n")
		b.WriteString(testexec.Report(*result.Tests))
	}

	if result.Stdout != "" {
		b.WriteString("\n## Standard Output (Last 50 lines)\n\n")
		fmt.Fprintf(&b, "```\n%s\n```\n", lastLines(result.Stdout, 50))
	}
	if result.Stderr != "" && result.Status != models.ExecutionSuccess {
		b.WriteString("\n## Standard Error (Last 50 lines)\n\n")
		fmt.Fprintf(&b, "```\n%s\n```\n", lastLines(result.Stderr, 50))
	}

	return b.String()
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
