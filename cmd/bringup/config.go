package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ShayCichocki/bringup/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config [key]",
	Short: "Show resolved configuration",
	Long: `Display the configuration bringup resolved from its sources.

Without arguments, displays all values. With one argument, displays the
value for that key.

Sources, highest precedence first:
  1. Environment variables (BRINGUP_*, ANTHROPIC_API_KEY)
  2. Project config (.bringup.yaml)
  3. User config (` + config.GetUserConfigPath() + `)
  4. Built-in defaults`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		if len(args) == 0 {
			displayAllConfig(cfg)
			return
		}
		displayConfigKey(cfg, args[0])
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Settings) {
	fmt.Printf("anthropic.api_key: %s\n", config.MaskAPIKey(cfg.Anthropic.APIKey))
	fmt.Printf("anthropic.api_key_source: %s\n", config.GetAPIKeySource(cfg.Anthropic))
	fmt.Printf("anthropic.model: %s\n", cfg.Anthropic.Model)
	fmt.Printf("anthropic.use_bedrock: %t\n", cfg.Anthropic.UseBedrock)
	fmt.Printf("execution.timeout: %s\n", cfg.Execution.Timeout)
	fmt.Printf("execution.setup_timeout: %s\n", cfg.Execution.SetupTimeout)
	fmt.Printf("execution.test_timeout: %s\n", cfg.Execution.TestTimeout)
	fmt.Printf("execution.grace_period: %s\n", cfg.Execution.GracePeriod)
	fmt.Printf("execution.max_output_bytes: %d\n", cfg.Execution.MaxOutputBytes)
	fmt.Printf("loop.max_cycles: %d\n", cfg.Loop.MaxCycles)
	fmt.Printf("loop.max_same_error_attempts: %d\n", cfg.Loop.MaxSameErrorAttempts)
	fmt.Printf("loop.run_tests: %t\n", cfg.Loop.RunTests)
	fmt.Printf("loop.auto_fix: %t\n", cfg.Loop.AutoFix)
	fmt.Printf("fixes.confidence_threshold: %.2f\n", cfg.Fixes.ConfidenceThreshold)
	fmt.Printf("fixes.allow_destructive: %t\n", cfg.Fixes.AllowDestructive)
	fmt.Printf("fixes.auto_backup: %t\n", cfg.Fixes.AutoBackup)
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Settings, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Settings, key string) (string, error) {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		return config.MaskAPIKey(cfg.Anthropic.APIKey), nil
	case "anthropic.api_key_source":
		return string(config.GetAPIKeySource(cfg.Anthropic)), nil
	case "anthropic.model":
		return cfg.Anthropic.Model, nil
	case "anthropic.use_bedrock":
		return strconv.FormatBool(cfg.Anthropic.UseBedrock), nil
	case "anthropic.aws_region":
		return cfg.Anthropic.AWSRegion, nil
	case "execution.timeout":
		return cfg.Execution.Timeout.String(), nil
	case "execution.setup_timeout":
		return cfg.Execution.SetupTimeout.String(), nil
	case "execution.test_timeout":
		return cfg.Execution.TestTimeout.String(), nil
	case "execution.grace_period":
		return cfg.Execution.GracePeriod.String(), nil
	case "execution.max_output_bytes":
		return strconv.Itoa(cfg.Execution.MaxOutputBytes), nil
	case "loop.max_cycles":
		return strconv.Itoa(cfg.Loop.MaxCycles), nil
	case "loop.max_same_error_attempts":
		return strconv.Itoa(cfg.Loop.MaxSameErrorAttempts), nil
	case "loop.run_tests":
		return strconv.FormatBool(cfg.Loop.RunTests), nil
	case "loop.auto_fix":
		return strconv.FormatBool(cfg.Loop.AutoFix), nil
	case "fixes.confidence_threshold":
		return strconv.FormatFloat(cfg.Fixes.ConfidenceThreshold, 'f', 2, 64), nil
	case "fixes.allow_destructive":
		return strconv.FormatBool(cfg.Fixes.AllowDestructive), nil
	case "fixes.auto_backup":
		return strconv.FormatBool(cfg.Fixes.AutoBackup), nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}
