// Package testexec detects test frameworks, runs test suites, and parses
// their output into normalized results.
package testexec

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ShayCichocki/bringup/internal/exec"
	"github.com/ShayCichocki/bringup/pkg/models"
)

const defaultTestTimeout = 5 * time.Minute

// Executor runs a project's test suite through the shared command runner.
type Executor struct {
	Runner  exec.CommandRunner
	Timeout time.Duration
}

// NewExecutor creates an Executor; a zero timeout uses the default.
func NewExecutor(runner exec.CommandRunner, timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = defaultTestTimeout
	}
	return &Executor{Runner: runner, Timeout: timeout}
}

// defaultCommands maps each framework to the command used when neither the
// caller nor the project profile provides one.
var defaultCommands = map[models.TestFramework]string{
	models.FrameworkPytest:   "pytest -v --tb=short",
	models.FrameworkUnittest: "python -m unittest discover -v",
	models.FrameworkJest:     "npm test -- --verbose",
	models.FrameworkMocha:    "npm test",
	models.FrameworkVitest:   "npm test",
	models.FrameworkDjango:   "python manage.py test -v 2",
	models.FrameworkGoTest:   "go test ./...",
	models.FrameworkCargo:    "cargo test",
}

// Run executes the project's tests and returns the parsed result. Command
// resolution order: explicit command, profile test command, framework
// default. A run with no resolvable command fails without executing
// anything.
func (e *Executor) Run(ctx context.Context, profile models.ProjectProfile, command string, framework models.TestFramework) models.TestResult {
	if framework == "" || framework == models.FrameworkUnknown {
		framework = DetectFramework(profile.RootPath)
	}
	if command == "" {
		command = profile.TestCommand
	}
	if command == "" {
		command = defaultCommands[framework]
	}
	if command == "" {
		return models.TestResult{
			Framework: framework,
			RawOutput: "No test command available for detected framework",
			ExitCode:  -1,
		}
	}

	res := e.Runner.Run(ctx, exec.Command{
		Command: command,
		Dir:     profile.RootPath,
		Env:     profile.Environment,
		Timeout: e.Timeout,
	})

	if res.InfraError != nil {
		return models.TestResult{
			Framework: framework,
			RawOutput: fmt.Sprintf("Error executing tests: %v", res.InfraError),
			Command:   command,
			ExitCode:  -1,
		}
	}
	if res.TimedOut {
		return models.TestResult{
			Framework: framework,
			RawOutput: fmt.Sprintf("Test execution timed out after %s", e.Timeout),
			Command:   command,
			ExitCode:  -1,
			Duration:  res.Duration,
		}
	}

	parsed := ParseOutput(res.Output(), framework)
	parsed.Duration = res.Duration
	parsed.RawOutput = res.Output()
	parsed.Command = command
	parsed.ExitCode = res.ExitCode
	// The exit code is authoritative: frameworks fail in ways their
	// summary lines do not always show.
	parsed.Success = res.ExitCode == 0
	return parsed
}

// frameworkIndicator ties a framework to the files that suggest it. The
// list is ordered; the first hit wins.
type frameworkIndicator struct {
	framework  models.TestFramework
	indicators []string
}

var frameworkIndicators = []frameworkIndicator{
	{models.FrameworkPytest, []string{"pytest.ini", "pyproject.toml", "conftest.py", "test_*.py"}},
	{models.FrameworkUnittest, []string{"test_*.py"}},
	{models.FrameworkJest, []string{"jest.config.js", "jest.config.ts", "jest.config.json"}},
	{models.FrameworkMocha, []string{"mocha.opts", ".mocharc.js", ".mocharc.json"}},
	{models.FrameworkVitest, []string{"vitest.config.js", "vitest.config.ts"}},
	{models.FrameworkDjango, []string{"manage.py"}},
}

// DetectFramework identifies the test framework used at root. JS manifests
// are checked first since their dependency lists are explicit, then
// toolchain manifests, then framework config files, then test file globs.
func DetectFramework(root string) models.TestFramework {
	if deps := jsDependencies(root); deps != nil {
		if _, ok := deps["vitest"]; ok {
			return models.FrameworkVitest
		}
		if _, ok := deps["jest"]; ok {
			return models.FrameworkJest
		}
		if _, ok := deps["mocha"]; ok {
			return models.FrameworkMocha
		}
	}

	if fileExists(root, "go.mod") {
		return models.FrameworkGoTest
	}
	if fileExists(root, "Cargo.toml") {
		return models.FrameworkCargo
	}

	for _, fi := range frameworkIndicators {
		for _, indicator := range fi.indicators {
			if strings.Contains(indicator, "*") {
				if matches, _ := filepath.Glob(filepath.Join(root, indicator)); len(matches) > 0 {
					return fi.framework
				}
				continue
			}
			if !fileExists(root, indicator) {
				continue
			}
			if fi.framework == models.FrameworkDjango {
				data, err := os.ReadFile(filepath.Join(root, "manage.py"))
				if err != nil || !strings.Contains(strings.ToLower(string(data)), "django") {
					continue
				}
			}
			return fi.framework
		}
	}

	if data, err := os.ReadFile(filepath.Join(root, "pyproject.toml")); err == nil {
		if strings.Contains(string(data), "pytest") {
			return models.FrameworkPytest
		}
	}

	if matches, _ := filepath.Glob(filepath.Join(root, "test_*.py")); len(matches) > 0 {
		return models.FrameworkPytest
	}
	if matches, _ := filepath.Glob(filepath.Join(root, "tests", "test_*.py")); len(matches) > 0 {
		return models.FrameworkPytest
	}

	return models.FrameworkUnknown
}

// jsDependencies returns the union of dependencies and devDependencies from
// package.json, or nil when there is no readable manifest.
func jsDependencies(root string) map[string]string {
	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		return nil
	}
	var pkg struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil
	}
	deps := make(map[string]string, len(pkg.Dependencies)+len(pkg.DevDependencies))
	for k, v := range pkg.Dependencies {
		deps[k] = v
	}
	for k, v := range pkg.DevDependencies {
		deps[k] = v
	}
	return deps
}

func fileExists(root, name string) bool {
	_, err := os.Stat(filepath.Join(root, name))
	return err == nil
}

// Report renders a test result as a markdown summary.
func Report(r models.TestResult) string {
	var b strings.Builder
	b.WriteString("# Test Execution Report\n\n")
	fmt.Fprintf(&b, "**Framework:** %s\n", r.Framework)
	fmt.Fprintf(&b, "**Command:** `%s`\n", r.Command)
	fmt.Fprintf(&b, "**Duration:** %.2fs\n", r.Duration.Seconds())
	fmt.Fprintf(&b, "**Exit Code:** %d\n\n", r.ExitCode)

	b.WriteString("## Summary\n\n")
	status := "FAILED"
	if r.Success {
		status = "PASSED"
	}
	fmt.Fprintf(&b, "**Status:** %s\n\n", status)
	b.WriteString("| Metric | Count |\n|--------|-------|\n")
	fmt.Fprintf(&b, "| Total  | %d |\n", r.Total)
	fmt.Fprintf(&b, "| Passed | %d |\n", r.Passed)
	fmt.Fprintf(&b, "| Failed | %d |\n", r.Failed)
	fmt.Fprintf(&b, "| Skipped| %d |\n", r.Skipped)
	fmt.Fprintf(&b, "| Errors | %d |\n", r.Errors)

	var failed []string
	for _, suite := range r.Suites {
		for _, tc := range suite.Tests {
			if tc.Status == models.TestFailed || tc.Status == models.TestErrored {
				entry := fmt.Sprintf("### %s::%s", suite.Name, tc.Name)
				if tc.ErrorMessage != "" {
					entry += "\n**Error:** " + tc.ErrorMessage
				}
				failed = append(failed, entry)
			}
		}
	}
	if len(failed) > 0 {
		b.WriteString("\n## Failed Tests\n\n")
		b.WriteString(strings.Join(failed, "\n\n"))
		b.WriteString("\n")
	}

	return b.String()
}
