package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ShayCichocki/bringup/internal/config"
	"github.com/ShayCichocki/bringup/internal/exec"
	"github.com/ShayCichocki/bringup/pkg/models"
)

// fakeRunner returns canned results per command and records every call.
type fakeRunner struct {
	results map[string]exec.Result
	calls   []exec.Command
}

func (f *fakeRunner) Run(ctx context.Context, cmd exec.Command) exec.Result {
	f.calls = append(f.calls, cmd)
	if r, ok := f.results[cmd.Command]; ok {
		return r
	}
	return exec.Result{ExitCode: 0}
}

func newTestRunner(fake *fakeRunner) *ProjectRunner {
	return NewProjectRunner(fake, config.Default().Execution)
}

func nodeProfile(root string) *models.ProjectProfile {
	return &models.ProjectProfile{
		Kind:           "nodejs",
		RootPath:       root,
		InstallCommand: "npm install",
		RunCommand:     "npm start",
		Environment:    map[string]string{"NODE_ENV": "development"},
	}
}

func TestRun_Success(t *testing.T) {
	fake := &fakeRunner{results: map[string]exec.Result{
		"npm start": {Stdout: "server listening on 3000\n", ExitCode: 0, Duration: 120 * time.Millisecond},
	}}
	r := newTestRunner(fake)

	result := r.Run(context.Background(), t.TempDir(), RunOptions{Profile: nodeProfile(t.TempDir())})

	if result.Status != models.ExecutionSuccess {
		t.Fatalf("status = %s, want success (message: %s)", result.Status, result.Message)
	}
	if result.ProjectKind != "nodejs" {
		t.Errorf("kind = %q", result.ProjectKind)
	}
	if result.ExitCode != 0 || len(result.Errors) != 0 {
		t.Errorf("exit = %d, errors = %d", result.ExitCode, len(result.Errors))
	}
}

func TestRun_DetectsProjectFromDisk(t *testing.T) {
	root := t.TempDir()
	manifest := `{"name": "demo", "scripts": {"start": "node server.js"}}`
	if err := os.WriteFile(filepath.Join(root, "package.json"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}

	fake := &fakeRunner{}
	r := newTestRunner(fake)

	result := r.Run(context.Background(), root, RunOptions{})

	if result.ProjectKind != "nodejs" {
		t.Fatalf("kind = %q, want nodejs", result.ProjectKind)
	}
	if len(fake.calls) != 1 || fake.calls[0].Command != "npm start" {
		t.Errorf("calls = %+v", fake.calls)
	}
}

func TestRun_SetupFailure(t *testing.T) {
	fake := &fakeRunner{results: map[string]exec.Result{
		"npm install": {ExitCode: 1, Stderr: "npm ERR! code E404\nnpm ERR! 404 Not Found"},
	}}
	r := newTestRunner(fake)

	result := r.Run(context.Background(), t.TempDir(), RunOptions{
		Profile: nodeProfile(t.TempDir()),
		Setup:   true,
	})

	if result.Status != models.ExecutionFailed {
		t.Fatalf("status = %s, want failed", result.Status)
	}
	if result.Message != "Setup failed" {
		t.Errorf("message = %q", result.Message)
	}
	if result.SetupOutput == "" {
		t.Error("setup output should be captured")
	}
	// The run command must not execute after a failed setup.
	for _, c := range fake.calls {
		if c.Command == "npm start" {
			t.Error("run command executed despite setup failure")
		}
	}
}

func TestRun_SetupUsesSetupTimeout(t *testing.T) {
	fake := &fakeRunner{}
	r := newTestRunner(fake)

	r.Run(context.Background(), t.TempDir(), RunOptions{
		Profile: nodeProfile(t.TempDir()),
		Setup:   true,
	})

	if len(fake.calls) != 2 {
		t.Fatalf("calls = %d, want setup then run", len(fake.calls))
	}
	if fake.calls[0].Timeout != r.Settings.SetupTimeout {
		t.Errorf("setup timeout = %s, want %s", fake.calls[0].Timeout, r.Settings.SetupTimeout)
	}
	if fake.calls[1].Timeout != r.Settings.Timeout {
		t.Errorf("run timeout = %s, want %s", fake.calls[1].Timeout, r.Settings.Timeout)
	}
}

func TestRun_NoRunCommand(t *testing.T) {
	r := newTestRunner(&fakeRunner{})
	profile := &models.ProjectProfile{Kind: "generic", RootPath: t.TempDir()}

	result := r.Run(context.Background(), profile.RootPath, RunOptions{Profile: profile})

	if result.Status != models.ExecutionFailed {
		t.Fatalf("status = %s, want failed", result.Status)
	}
	if result.Message != "No run command available" {
		t.Errorf("message = %q", result.Message)
	}
}

func TestRun_DevCommandFallback(t *testing.T) {
	fake := &fakeRunner{}
	r := newTestRunner(fake)
	profile := &models.ProjectProfile{
		Kind:       "react",
		RootPath:   t.TempDir(),
		DevCommand: "npm start",
	}

	r.Run(context.Background(), profile.RootPath, RunOptions{Profile: profile})

	if len(fake.calls) != 1 || fake.calls[0].Command != "npm start" {
		t.Errorf("calls = %+v", fake.calls)
	}
}

func TestRun_ExplicitCommandWins(t *testing.T) {
	fake := &fakeRunner{}
	r := newTestRunner(fake)

	r.Run(context.Background(), t.TempDir(), RunOptions{
		Profile: nodeProfile(t.TempDir()),
		Command: "node server.js --inspect",
	})

	if len(fake.calls) != 1 || fake.calls[0].Command != "node server.js --inspect" {
		t.Errorf("calls = %+v", fake.calls)
	}
}

func TestRun_Timeout(t *testing.T) {
	fake := &fakeRunner{results: map[string]exec.Result{
		"npm start": {ExitCode: -1, TimedOut: true, Stdout: "booting\n"},
	}}
	r := newTestRunner(fake)

	result := r.Run(context.Background(), t.TempDir(), RunOptions{Profile: nodeProfile(t.TempDir())})

	if result.Status != models.ExecutionTimeout {
		t.Fatalf("status = %s, want timeout", result.Status)
	}
	if !strings.Contains(result.Stderr, "timed out") {
		t.Errorf("stderr missing timeout note: %q", result.Stderr)
	}
}

func TestRun_Cancelled(t *testing.T) {
	fake := &fakeRunner{results: map[string]exec.Result{
		"npm start": {ExitCode: -1, Cancelled: true},
	}}
	r := newTestRunner(fake)

	result := r.Run(context.Background(), t.TempDir(), RunOptions{Profile: nodeProfile(t.TempDir())})

	if result.Status != models.ExecutionCancelled {
		t.Fatalf("status = %s, want cancelled", result.Status)
	}
}

func TestRun_InfraError(t *testing.T) {
	fake := &fakeRunner{results: map[string]exec.Result{
		"npm start": {ExitCode: -1, InfraError: errors.New("fork/exec: no such file")},
	}}
	r := newTestRunner(fake)

	result := r.Run(context.Background(), t.TempDir(), RunOptions{Profile: nodeProfile(t.TempDir())})

	if result.Status != models.ExecutionFailed {
		t.Fatalf("status = %s, want failed", result.Status)
	}
	if !strings.Contains(result.Message, "Execution error") {
		t.Errorf("message = %q", result.Message)
	}
}

func TestRun_CriticalErrorsPromoteFailure(t *testing.T) {
	fake := &fakeRunner{results: map[string]exec.Result{
		"npm start": {
			Stdout:   "starting\n",
			Stderr:   "Error: Cannot find module 'express'\n",
			ExitCode: 0,
		},
	}}
	r := newTestRunner(fake)

	result := r.Run(context.Background(), t.TempDir(), RunOptions{Profile: nodeProfile(t.TempDir())})

	if result.Status != models.ExecutionFailed {
		t.Fatalf("status = %s, want failed despite exit 0", result.Status)
	}
	if len(result.Errors) == 0 {
		t.Fatal("expected detected errors")
	}
}

func TestRun_EnvMerge(t *testing.T) {
	fake := &fakeRunner{}
	r := newTestRunner(fake)

	r.Run(context.Background(), t.TempDir(), RunOptions{
		Profile: nodeProfile(t.TempDir()),
		Env:     map[string]string{"NODE_ENV": "test", "PORT": "4000"},
	})

	env := fake.calls[0].Env
	if env["NODE_ENV"] != "test" {
		t.Errorf("caller env must win: NODE_ENV = %q", env["NODE_ENV"])
	}
	if env["PORT"] != "4000" {
		t.Errorf("PORT = %q", env["PORT"])
	}
}

func TestDetectErrors_TruncatesToTail(t *testing.T) {
	r := newTestRunner(&fakeRunner{})
	profile := models.ProjectProfile{Kind: "python"}

	filler := strings.Repeat("log line\n", 20000)
	stdout := filler + "ModuleNotFoundError: No module named 'requests'\n"

	errs := r.DetectErrors(profile, stdout, "")

	found := false
	for _, e := range errs {
		if e.Category == models.CategoryImport {
			found = true
		}
	}
	if !found {
		t.Error("error at the tail of oversized output must still be detected")
	}
}

func TestDetectErrors_ProfilePatternsLayered(t *testing.T) {
	r := newTestRunner(&fakeRunner{})
	profile := models.ProjectProfile{
		Kind:          "custom",
		ErrorPatterns: []string{`FATAL_WIDGET`},
	}

	errs := r.DetectErrors(profile, "FATAL_WIDGET: spline unreticulated\n", "")

	if len(errs) == 0 {
		t.Fatal("profile pattern did not match")
	}
}

func TestRunTests_SetupFailureShortCircuits(t *testing.T) {
	root := t.TempDir()
	os.WriteFile(filepath.Join(root, "requirements.txt"), []byte("flask\n"), 0o644)
	os.WriteFile(filepath.Join(root, "pytest.ini"), []byte("[pytest]\n"), 0o644)

	fake := &fakeRunner{results: map[string]exec.Result{
		"pip install -r requirements.txt": {ExitCode: 1, Stderr: "No matching distribution"},
	}}
	r := newTestRunner(fake)

	res := r.RunTests(context.Background(), root, "", true)

	if res.RawOutput != "Setup failed before tests" {
		t.Errorf("raw output = %q", res.RawOutput)
	}
	if res.ExitCode != -1 {
		t.Errorf("exit = %d", res.ExitCode)
	}
}

func TestRunTests_RunsSuite(t *testing.T) {
	root := t.TempDir()
	os.WriteFile(filepath.Join(root, "pytest.ini"), []byte("[pytest]\n"), 0o644)

	fake := &fakeRunner{results: map[string]exec.Result{
		"pytest -v --tb=short": {Stdout: "5 passed in 0.2s\n", ExitCode: 0},
	}}
	r := newTestRunner(fake)

	res := r.RunTests(context.Background(), root, "", false)

	if !res.Success {
		t.Fatalf("tests should pass: %+v", res)
	}
	if res.Passed != 5 {
		t.Errorf("passed = %d", res.Passed)
	}
}

func TestSummary(t *testing.T) {
	result := models.ExecutionResult{
		Status:      models.ExecutionFailed,
		ProjectKind: "flask",
		ExitCode:    1,
		Duration:    1500 * time.Millisecond,
		Stdout:      "starting\n",
		Stderr:      "ModuleNotFoundError: No module named 'flask'\n",
		Errors: []models.DetectedError{{
			Category: models.CategoryImport,
			Message:  "ModuleNotFoundError: No module named 'flask'",
			Severity: models.SeverityError,
		}},
	}

	report := Summary(result)

	for _, want := range []string{
		"# Project Execution Summary",
		"**Project Type:** flask",
		"**Status:** failed",
		"Standard Error",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestSummary_SuccessOmitsStderr(t *testing.T) {
	result := models.ExecutionResult{
		Status:      models.ExecutionSuccess,
		ProjectKind: "go",
		Stdout:      "ok\n",
		Stderr:      "warning: something benign\n",
	}

	report := Summary(result)

	if strings.Contains(report, "Standard Error") {
		t.Error("stderr section should be omitted on success")
	}
}
