package project

import (
	"strings"

	"github.com/ShayCichocki/bringup/pkg/models"
)

type goHandler struct{}

func (goHandler) Name() string  { return "go" }
func (goHandler) Priority() int { return 8 }

func (goHandler) Detect(root string) bool {
	return fileExists(root, "go.mod")
}

func (h goHandler) Profile(root string) models.ProjectProfile {
	runCmd := "go run ."
	if fileExists(root, "cmd") && isDir(root, "cmd") {
		runCmd = "go run ./cmd/..."
	}

	return models.ProjectProfile{
		Kind:             h.Name(),
		RootPath:         root,
		InstallCommand:   "go mod download",
		RunCommand:       runCmd,
		TestCommand:      "go test ./...",
		BuildCommand:     "go build ./...",
		EntryPoint:       "main.go",
		DependenciesFile: "go.mod",
		ConfigFiles:      []string{"go.mod", "go.sum"},
		ErrorPatterns:    goErrorPatterns,
	}
}

var goErrorPatterns = []string{
	`cannot find package`,
	`no required module provides package`,
	`undefined:`,
	`syntax error:`,
	`panic:`,
	`fatal error:`,
	`go: `,
	`\.go:\d+:\d+:`,
}

type cargoHandler struct{}

func (cargoHandler) Name() string  { return "cargo" }
func (cargoHandler) Priority() int { return 8 }

func (cargoHandler) Detect(root string) bool {
	return fileExists(root, "Cargo.toml")
}

func (h cargoHandler) Profile(root string) models.ProjectProfile {
	return models.ProjectProfile{
		Kind:             h.Name(),
		RootPath:         root,
		InstallCommand:   "cargo fetch",
		RunCommand:       "cargo run",
		TestCommand:      "cargo test",
		BuildCommand:     "cargo build",
		EntryPoint:       "src/main.rs",
		DependenciesFile: "Cargo.toml",
		ConfigFiles:      []string{"Cargo.toml", "Cargo.lock"},
		ErrorPatterns:    cargoErrorPatterns,
	}
}

var cargoErrorPatterns = []string{
	`error\[E\d+\]`,
	`error:`,
	`thread '.*' panicked`,
	`cannot find crate`,
	`unresolved import`,
	`mismatched types`,
}

type genericHandler struct{}

func (genericHandler) Name() string  { return "generic" }
func (genericHandler) Priority() int { return 0 }

// Detect always matches; generic is the fallback of last resort.
func (genericHandler) Detect(root string) bool { return true }

func (h genericHandler) Profile(root string) models.ProjectProfile {
	var entry string
	for _, candidate := range []string{"main.py", "main.js", "index.js", "app.py", "app.js", "run.sh"} {
		if fileExists(root, candidate) {
			entry = candidate
			break
		}
	}

	var runCmd string
	switch {
	case strings.HasSuffix(entry, ".py"):
		runCmd = "python " + entry
	case strings.HasSuffix(entry, ".js"):
		runCmd = "node " + entry
	case strings.HasSuffix(entry, ".sh"):
		runCmd = "bash " + entry
	}

	return models.ProjectProfile{
		Kind:          h.Name(),
		RootPath:      root,
		RunCommand:    runCmd,
		EntryPoint:    entry,
		ErrorPatterns: genericErrorPatterns,
	}
}

var genericErrorPatterns = []string{
	`Error:`,
	`Exception:`,
	`Traceback`,
	`FATAL:`,
	`CRITICAL:`,
	`ERROR:`,
	`failed`,
	`error:`,
}
