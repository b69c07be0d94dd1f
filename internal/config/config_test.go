package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Execution.Timeout != 5*time.Minute {
		t.Errorf("expected execution timeout 5m, got %v", cfg.Execution.Timeout)
	}

	if cfg.Execution.SetupTimeout != 10*time.Minute {
		t.Errorf("expected setup timeout 10m, got %v", cfg.Execution.SetupTimeout)
	}

	if cfg.Execution.GracePeriod != 5*time.Second {
		t.Errorf("expected grace period 5s, got %v", cfg.Execution.GracePeriod)
	}

	if cfg.Execution.MaxOutputBytes != 500000 {
		t.Errorf("expected max output 500000, got %d", cfg.Execution.MaxOutputBytes)
	}

	if cfg.Loop.MaxCycles != 10 {
		t.Errorf("expected max cycles 10, got %d", cfg.Loop.MaxCycles)
	}

	if cfg.Loop.MaxSameErrorAttempts != 3 {
		t.Errorf("expected max same-error attempts 3, got %d", cfg.Loop.MaxSameErrorAttempts)
	}

	if !cfg.Loop.RunTests {
		t.Error("expected loop.run_tests to be true")
	}

	if !cfg.Loop.AutoFix {
		t.Error("expected loop.auto_fix to be true")
	}

	if cfg.Fixes.ConfidenceThreshold != 0.7 {
		t.Errorf("expected confidence threshold 0.7, got %v", cfg.Fixes.ConfidenceThreshold)
	}

	if cfg.Fixes.AllowDestructive {
		t.Error("expected fixes.allow_destructive to be false")
	}

	if !cfg.Fixes.AutoBackup {
		t.Error("expected fixes.auto_backup to be true")
	}
}

func TestLoadFromPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
anthropic:
  api_key: sk-ant-test
  model: claude-test
execution:
  timeout: 90s
  max_output_bytes: 1024
loop:
  max_cycles: 4
  run_tests: false
fixes:
  confidence_threshold: 0.5
  allow_destructive: true
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Anthropic.APIKey != "sk-ant-test" {
		t.Errorf("api_key = %q, want sk-ant-test", cfg.Anthropic.APIKey)
	}
	if cfg.Anthropic.Model != "claude-test" {
		t.Errorf("model = %q, want claude-test", cfg.Anthropic.Model)
	}
	if cfg.Execution.Timeout != 90*time.Second {
		t.Errorf("timeout = %v, want 90s", cfg.Execution.Timeout)
	}
	if cfg.Execution.MaxOutputBytes != 1024 {
		t.Errorf("max_output_bytes = %d, want 1024", cfg.Execution.MaxOutputBytes)
	}
	if cfg.Loop.MaxCycles != 4 {
		t.Errorf("max_cycles = %d, want 4", cfg.Loop.MaxCycles)
	}
	if cfg.Loop.RunTests {
		t.Error("run_tests should be false")
	}
	if cfg.Fixes.ConfidenceThreshold != 0.5 {
		t.Errorf("confidence_threshold = %v, want 0.5", cfg.Fixes.ConfidenceThreshold)
	}
	if !cfg.Fixes.AllowDestructive {
		t.Error("allow_destructive should be true")
	}

	// Unset values fall back to defaults.
	if cfg.Execution.SetupTimeout != 10*time.Minute {
		t.Errorf("setup_timeout = %v, want default 10m", cfg.Execution.SetupTimeout)
	}
	if cfg.Loop.MaxSameErrorAttempts != 3 {
		t.Errorf("max_same_error_attempts = %d, want default 3", cfg.Loop.MaxSameErrorAttempts)
	}
}

func TestLoadFromPath_MissingFile(t *testing.T) {
	_, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}
