package main

import (
	"fmt"
	"os"

	"github.com/ShayCichocki/bringup/internal/api"
	"github.com/ShayCichocki/bringup/internal/config"
	"github.com/ShayCichocki/bringup/internal/exec"
	"github.com/ShayCichocki/bringup/internal/fix"
)

// newAutoFixer builds the fixer, attaching the API collaborator when
// credentials are available. Without a collaborator, only deterministic
// fixes (installs, config repairs) are possible.
func newAutoFixer(cfg *config.Settings, cmdRunner exec.CommandRunner) *fix.AutoFixer {
	client, err := api.NewClient(cfg.Anthropic)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: code-generation collaborator unavailable: %v\n", err)
		fmt.Fprintln(os.Stderr, "Only deterministic fixes will be attempted. Set ANTHROPIC_API_KEY to enable code fixes.")
		return fix.NewAutoFixer(cmdRunner, nil, cfg.Fixes)
	}
	return fix.NewAutoFixer(cmdRunner, api.NewGenerator(client), cfg.Fixes)
}
