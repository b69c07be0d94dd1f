package fix

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ShayCichocki/bringup/internal/exec"
	"github.com/ShayCichocki/bringup/pkg/models"
)

// scriptedRunner returns canned results per command and records what ran.
type scriptedRunner struct {
	results map[string]exec.Result
	ran     []string
}

func (s *scriptedRunner) Run(ctx context.Context, cmd exec.Command) exec.Result {
	s.ran = append(s.ran, cmd.Command)
	if r, ok := s.results[cmd.Command]; ok {
		return r
	}
	return exec.Result{ExitCode: 0}
}

func TestExtractMissingNPMPackage(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"Error: Cannot find module 'express'", "express"},
		{"Error: Cannot find module 'lodash/merge'", "lodash"},
		{"Error: Cannot find module '@scope/pkg/deep'", "@scope/pkg"},
		{"Error: Cannot find module './local/file'", ""},
		{"Module not found: 'react-dom'", "react-dom"},
		{"nothing relevant", ""},
	}
	for _, tt := range tests {
		err := models.DetectedError{Message: tt.message}
		if got := ExtractMissingNPMPackage(err); got != tt.want {
			t.Errorf("ExtractMissingNPMPackage(%q) = %q, want %q", tt.message, got, tt.want)
		}
	}
}

func TestExtractMissingPythonModule(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"ModuleNotFoundError: No module named 'requests'", "requests"},
		{"ModuleNotFoundError: No module named 'yaml.parser'", "yaml"},
		{"ImportError: cannot import name 'urlopen'", "urlopen"},
		{"nothing relevant", ""},
	}
	for _, tt := range tests {
		err := models.DetectedError{Message: tt.message}
		if got := ExtractMissingPythonModule(err); got != tt.want {
			t.Errorf("ExtractMissingPythonModule(%q) = %q, want %q", tt.message, got, tt.want)
		}
	}
}

func TestExtractPort(t *testing.T) {
	tests := []struct {
		message string
		want    int
		ok      bool
	}{
		{"Error: listen EADDRINUSE: address already in use :::3000", 3000, true},
		{"OSError: [Errno 98] Address already in use: ('0.0.0.0', 8000)", 0, false},
		{"port 5000 is already in use", 5000, true},
		{"no port here", 0, false},
	}
	for _, tt := range tests {
		err := models.DetectedError{Message: tt.message}
		got, ok := ExtractPort(err)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ExtractPort(%q) = %d,%v want %d,%v", tt.message, got, ok, tt.want, tt.ok)
		}
	}
}

func TestInstallNPMPackage_RecordsRollback(t *testing.T) {
	runner := &scriptedRunner{}
	f := &DependencyFixer{Runner: runner}

	res := f.InstallNPMPackage(context.Background(), t.TempDir(), "express")

	if !res.Success {
		t.Fatalf("install failed: %s", res.Message)
	}
	if res.Rollback["command"] != "npm uninstall express" {
		t.Errorf("rollback = %v", res.Rollback)
	}
	if len(runner.ran) != 1 || runner.ran[0] != "npm install express" {
		t.Errorf("ran = %v", runner.ran)
	}
}

func TestInstallPythonPackage_FailurePropagates(t *testing.T) {
	runner := &scriptedRunner{results: map[string]exec.Result{
		"pip install requests": {ExitCode: 1, Stderr: "No matching distribution found"},
	}}
	f := &DependencyFixer{Runner: runner}

	res := f.InstallPythonPackage(context.Background(), t.TempDir(), "requests")

	if res.Success {
		t.Error("expected failure")
	}
}

func TestKillPortProcess(t *testing.T) {
	runner := &scriptedRunner{results: map[string]exec.Result{
		"lsof -ti :3000": {Stdout: "1234\n5678\n", ExitCode: 0},
	}}
	f := &PortFixer{Runner: runner}

	res := f.KillPortProcess(context.Background(), 3000)

	if !res.Success {
		t.Fatalf("kill failed: %s", res.Message)
	}
	want := []string{"lsof -ti :3000", "kill -9 1234", "kill -9 5678"}
	if len(runner.ran) != len(want) {
		t.Fatalf("ran = %v, want %v", runner.ran, want)
	}
	for i := range want {
		if runner.ran[i] != want[i] {
			t.Errorf("ran[%d] = %q, want %q", i, runner.ran[i], want[i])
		}
	}
}

func TestKillPortProcess_NoHolder(t *testing.T) {
	runner := &scriptedRunner{results: map[string]exec.Result{
		"lsof -ti :3000": {Stdout: "", ExitCode: 1},
	}}
	f := &PortFixer{Runner: runner}

	res := f.KillPortProcess(context.Background(), 3000)

	if res.Success {
		t.Error("expected failure when no process holds the port")
	}
}

func TestFixFilePermissions_RollbackRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	res := FixFilePermissions(path, 0o644)
	if !res.Success {
		t.Fatalf("fix failed: %s", res.Message)
	}

	info, _ := os.Stat(path)
	if info.Mode().Perm() != 0o644 {
		t.Errorf("mode = %o, want 644", info.Mode().Perm())
	}

	if err := RollbackPermissions(res.Rollback); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	info, _ = os.Stat(path)
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode after rollback = %o, want 600", info.Mode().Perm())
	}
}

func TestFixFilePermissions_MissingFile(t *testing.T) {
	res := FixFilePermissions(filepath.Join(t.TempDir(), "nope"), 0o644)
	if res.Success {
		t.Error("expected failure for missing file")
	}
}

func TestCreateEnvFromTemplate_RollbackRoundTrip(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env.sample"), []byte("PORT=3000\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res := CreateEnvFromTemplate(dir)
	if !res.Success {
		t.Fatalf("create failed: %s", res.Message)
	}

	data, err := os.ReadFile(filepath.Join(dir, ".env"))
	if err != nil || string(data) != "PORT=3000\n" {
		t.Fatalf("env content = %q, err = %v", data, err)
	}

	if err := RollbackCreatedFile(res.Rollback); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".env")); !os.IsNotExist(err) {
		t.Error("rollback should remove the created .env")
	}
}

func TestCreateEnvFromTemplate_ExistingEnvUntouched(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, ".env"), []byte("KEEP=1\n"), 0o644)
	os.WriteFile(filepath.Join(dir, ".env.example"), []byte("PORT=3000\n"), 0o644)

	res := CreateEnvFromTemplate(dir)

	if res.Success {
		t.Error("must not overwrite an existing .env")
	}
	data, _ := os.ReadFile(filepath.Join(dir, ".env"))
	if string(data) != "KEEP=1\n" {
		t.Errorf(".env was modified: %q", data)
	}
}

func TestCreateEnvFromTemplate_NoTemplate(t *testing.T) {
	res := CreateEnvFromTemplate(t.TempDir())
	if res.Success {
		t.Error("expected failure without a template")
	}
}

func TestBackupManager_SnapshotAndRestore(t *testing.T) {
	root := t.TempDir()
	os.MkdirAll(filepath.Join(root, "src"), 0o755)
	os.WriteFile(filepath.Join(root, "src", "app.py"), []byte("original"), 0o644)

	b := NewBackupManager(root)
	dir, err := b.Snapshot([]string{filepath.Join("src", "app.py"), "missing.txt"})
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	os.WriteFile(filepath.Join(root, "src", "app.py"), []byte("clobbered"), 0o644)

	if err := b.Restore(dir); err != nil {
		t.Fatalf("restore: %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(root, "src", "app.py"))
	if string(data) != "original" {
		t.Errorf("restored content = %q", data)
	}
}

func TestClassifySyntaxError(t *testing.T) {
	tests := []struct {
		message string
		want    SyntaxFixKind
	}{
		{"IndentationError: unexpected indent", SyntaxIndentation},
		{"SyntaxError: Unexpected token '}'", SyntaxUnexpectedToken},
		{"SyntaxError: unterminated string literal", SyntaxUnterminated},
		{"SyntaxError: missing ) after argument list", SyntaxMissingBracket},
		{"something else entirely", SyntaxUnclassified},
	}
	for _, tt := range tests {
		err := models.DetectedError{Message: tt.message}
		if got := ClassifySyntaxError(err); got != tt.want {
			t.Errorf("ClassifySyntaxError(%q) = %q, want %q", tt.message, got, tt.want)
		}
	}
}
