package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ShayCichocki/bringup/internal/project"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Initialize a project for bringup",
	Long: `Initialize a directory for use with bringup.

This command detects the project type and writes a .bringup.yaml with
the detected commands, so they can be reviewed and adjusted. It also
creates the .bringup directory that holds run history, backups, and
signals.

The directory argument is optional and defaults to the current directory.

Examples:
  bringup init              # Initialize current directory
  bringup init ./myproject  # Initialize specific directory
  bringup init --force      # Rewrite .bringup.yaml even if it exists`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Rewrite .bringup.yaml even if it exists")
}

// initConfig is the .bringup.yaml layout written by init. The project
// section mirrors the override schema the detector reads back.
type initConfig struct {
	Project struct {
		Kind           string `yaml:"kind"`
		InstallCommand string `yaml:"install_command,omitempty"`
		RunCommand     string `yaml:"run_command,omitempty"`
		TestCommand    string `yaml:"test_command,omitempty"`
	} `yaml:"project"`
	Loop struct {
		MaxCycles int  `yaml:"max_cycles"`
		RunTests  bool `yaml:"run_tests"`
		AutoFix   bool `yaml:"auto_fix"`
	} `yaml:"loop"`
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}

	fmt.Printf("Initializing bringup in %s...\n\n", root)

	configPath := filepath.Join(root, ".bringup.yaml")
	if _, err := os.Stat(configPath); err == nil && !initForce {
		fmt.Println("Already initialized. Use --force to rewrite .bringup.yaml.")
		return nil
	}

	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey == "" {
		printStatus("⚠", "ANTHROPIC_API_KEY not set (deterministic fixes only until it is)", color.FgYellow)
	} else {
		printStatus("✓", "ANTHROPIC_API_KEY is set", color.FgGreen)
	}

	profile, err := project.NewDetector().Detect(root)
	if err != nil {
		return fmt.Errorf("detect project: %w", err)
	}
	printStatus("✓", fmt.Sprintf("Detected project kind: %s", profile.Kind), color.FgGreen)

	bringupDir := filepath.Join(root, ".bringup")
	if err := os.MkdirAll(bringupDir, 0755); err != nil {
		return fmt.Errorf("creating .bringup directory: %w", err)
	}
	printStatus("✓", "Created .bringup directory", color.FgGreen)

	var cfg initConfig
	cfg.Project.Kind = profile.Kind
	cfg.Project.InstallCommand = profile.InstallCommand
	cfg.Project.RunCommand = profile.RunCommand
	cfg.Project.TestCommand = profile.TestCommand
	cfg.Loop.MaxCycles = 10
	cfg.Loop.RunTests = true
	cfg.Loop.AutoFix = true

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	header := "# bringup project configuration.\n# The project section overrides detection; remove a line to fall back to it.\n"
	if err := os.WriteFile(configPath, append([]byte(header), data...), 0644); err != nil {
		return fmt.Errorf("write %s: %w", configPath, err)
	}
	printStatus("✓", "Wrote .bringup.yaml", color.FgGreen)

	fmt.Println("\nNext steps:")
	fmt.Println("  bringup run      # Run the project once")
	fmt.Println("  bringup verify   # Run, fix, and retry until clean")
	return nil
}
