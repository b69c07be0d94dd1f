// Package config handles configuration loading and management for bringup.
// It supports XDG config paths, project-level overrides, and environment
// variables. The engine itself never reads the environment: it receives a
// fully built Settings value from here.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Settings holds all configuration for a verification run.
type Settings struct {
	Anthropic AnthropicSettings `mapstructure:"anthropic"`
	Execution ExecutionSettings `mapstructure:"execution"`
	Loop      LoopSettings      `mapstructure:"loop"`
	Fixes     FixSettings       `mapstructure:"fixes"`
}

// AnthropicSettings holds collaborator API settings.
type AnthropicSettings struct {
	// APIKey is the Anthropic API key; ${VAR} references are expanded.
	APIKey string `mapstructure:"api_key"`
	// Model is the model identifier used for fix generation.
	Model string `mapstructure:"model"`
	// UseBedrock routes requests through AWS Bedrock instead of the API.
	UseBedrock bool `mapstructure:"use_bedrock"`
	// AWSRegion is the Bedrock region.
	AWSRegion string `mapstructure:"aws_region"`
	// AWSProfile is an optional AWS shared-config profile.
	AWSProfile string `mapstructure:"aws_profile"`
}

// ExecutionSettings holds process execution limits.
type ExecutionSettings struct {
	// Timeout bounds a single run command.
	Timeout time.Duration `mapstructure:"timeout"`
	// SetupTimeout bounds the one-time install step.
	SetupTimeout time.Duration `mapstructure:"setup_timeout"`
	// TestTimeout bounds a test run.
	TestTimeout time.Duration `mapstructure:"test_timeout"`
	// GracePeriod is how long a process group gets between SIGTERM and
	// SIGKILL.
	GracePeriod time.Duration `mapstructure:"grace_period"`
	// MaxOutputBytes caps captured stdout+stderr per execution.
	MaxOutputBytes int `mapstructure:"max_output_bytes"`
}

// LoopSettings holds verification-loop limits.
type LoopSettings struct {
	// MaxCycles is the cycle budget per run.
	MaxCycles int `mapstructure:"max_cycles"`
	// MaxSameErrorAttempts caps fix attempts per distinct error.
	MaxSameErrorAttempts int `mapstructure:"max_same_error_attempts"`
	// RunTests enables the test step after a successful execution.
	RunTests bool `mapstructure:"run_tests"`
	// AutoFix enables fix attempts; off means observe-only cycles.
	AutoFix bool `mapstructure:"auto_fix"`
}

// FixSettings holds fix application policy.
type FixSettings struct {
	// ConfidenceThreshold is the minimum confidence to apply a fix.
	// Below it, a fix is recorded but not applied.
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
	// AllowDestructive permits fixes that delete files.
	AllowDestructive bool `mapstructure:"allow_destructive"`
	// AutoBackup snapshots files before overwriting them.
	AutoBackup bool `mapstructure:"auto_backup"`
}

// Default returns Settings with documented default values.
func Default() *Settings {
	return &Settings{
		Anthropic: AnthropicSettings{
			Model: "claude-3-5-sonnet-20241022",
		},
		Execution: ExecutionSettings{
			Timeout:        5 * time.Minute,
			SetupTimeout:   10 * time.Minute,
			TestTimeout:    5 * time.Minute,
			GracePeriod:    5 * time.Second,
			MaxOutputBytes: 500000,
		},
		Loop: LoopSettings{
			MaxCycles:            10,
			MaxSameErrorAttempts: 3,
			RunTests:             true,
			AutoFix:              true,
		},
		Fixes: FixSettings{
			ConfidenceThreshold: 0.7,
			AllowDestructive:    false,
			AutoBackup:          true,
		},
	}
}

// Load loads configuration from XDG paths, project overrides, and
// environment variables. Precedence (highest to lowest):
// 1. Environment variables (BRINGUP_*, ANTHROPIC_API_KEY)
// 2. Project config (.bringup.yaml in current directory or parent)
// 3. User config (~/.config/bringup/config.yaml)
// 4. Built-in defaults
func Load() (*Settings, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Load project config if present
	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	// Environment variable overrides
	v.SetEnvPrefix("BRINGUP")
	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")

	cfg := &Settings{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Settings, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Settings{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "claude-3-5-sonnet-20241022")
	v.SetDefault("anthropic.use_bedrock", false)

	v.SetDefault("execution.timeout", "5m")
	v.SetDefault("execution.setup_timeout", "10m")
	v.SetDefault("execution.test_timeout", "5m")
	v.SetDefault("execution.grace_period", "5s")
	v.SetDefault("execution.max_output_bytes", 500000)

	v.SetDefault("loop.max_cycles", 10)
	v.SetDefault("loop.max_same_error_attempts", 3)
	v.SetDefault("loop.run_tests", true)
	v.SetDefault("loop.auto_fix", true)

	v.SetDefault("fixes.confidence_threshold", 0.7)
	v.SetDefault("fixes.allow_destructive", false)
	v.SetDefault("fixes.auto_backup", true)
}

// getUserConfigDir returns the XDG config directory for bringup.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "bringup")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "bringup")
	}
	return filepath.Join(home, ".config", "bringup")
}

// findProjectConfig searches for .bringup.yaml in the current directory and
// parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".bringup.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}
