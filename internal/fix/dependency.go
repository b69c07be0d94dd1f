package fix

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ShayCichocki/bringup/internal/exec"
	"github.com/ShayCichocki/bringup/pkg/models"
)

const installTimeout = 2 * time.Minute

// DependencyFixer installs missing packages extracted from error messages.
type DependencyFixer struct {
	Runner exec.CommandRunner
}

var npmModuleRes = []*regexp.Regexp{
	regexp.MustCompile(`Cannot find module ['"]([^'"]+)['"]`),
	regexp.MustCompile(`Module not found: ['"]([^'"]+)['"]`),
	regexp.MustCompile(`Cannot find package ['"]([^'"]+)['"]`),
	regexp.MustCompile(`npm ERR! missing: ([^,@]+)`),
}

// ExtractMissingNPMPackage pulls the installable package name from a node
// resolution error. Relative imports yield nothing; scoped packages keep
// their scope; deep imports are cut back to the package root.
func ExtractMissingNPMPackage(err models.DetectedError) string {
	for _, re := range npmModuleRes {
		m := re.FindStringSubmatch(err.Message)
		if m == nil {
			continue
		}
		module := m[1]
		if strings.HasPrefix(module, ".") {
			continue
		}
		parts := strings.Split(module, "/")
		if strings.HasPrefix(module, "@") && len(parts) >= 2 {
			return parts[0] + "/" + parts[1]
		}
		return parts[0]
	}
	return ""
}

var pythonModuleRes = []*regexp.Regexp{
	regexp.MustCompile(`No module named ['"]?([^'"\s]+)['"]?`),
	regexp.MustCompile(`ModuleNotFoundError: No module named ['"]?([^'"\s]+)['"]?`),
	regexp.MustCompile(`ImportError: cannot import name ['"]?(\w+)['"]?`),
}

// ExtractMissingPythonModule pulls the top-level module name from a Python
// import error.
func ExtractMissingPythonModule(err models.DetectedError) string {
	for _, re := range pythonModuleRes {
		if m := re.FindStringSubmatch(err.Message); m != nil {
			return strings.SplitN(m[1], ".", 2)[0]
		}
	}
	return ""
}

// InstallNPMPackage installs one npm package in the project root.
func (f *DependencyFixer) InstallNPMPackage(ctx context.Context, root, pkg string) models.FixResult {
	strategy := &models.FixStrategy{
		Name:        "npm_install_module",
		Description: "Install npm package: " + pkg,
		Type:        models.FixDependency,
		Categories:  []models.ErrorCategory{models.CategoryImport, models.CategoryDependency},
		Confidence:  0.85,
		Command:     "npm install " + pkg,
	}
	return f.install(ctx, root, strategy, "Installed npm package: "+pkg, "npm uninstall "+pkg)
}

// InstallPythonPackage installs one Python package in the project root.
func (f *DependencyFixer) InstallPythonPackage(ctx context.Context, root, pkg string) models.FixResult {
	strategy := &models.FixStrategy{
		Name:        "pip_install_module",
		Description: "Install Python package: " + pkg,
		Type:        models.FixDependency,
		Categories:  []models.ErrorCategory{models.CategoryImport, models.CategoryDependency},
		Confidence:  0.85,
		Command:     "pip install " + pkg,
	}
	return f.install(ctx, root, strategy, "Installed Python package: "+pkg, "pip uninstall -y "+pkg)
}

func (f *DependencyFixer) install(ctx context.Context, root string, strategy *models.FixStrategy, change, undo string) models.FixResult {
	res := f.Runner.Run(ctx, exec.Command{
		Command: strategy.Command,
		Dir:     root,
		Timeout: installTimeout,
	})

	if res.InfraError != nil {
		return models.FixResult{
			Strategy: strategy,
			Message:  fmt.Sprintf("Error running %q: %v", strategy.Command, res.InfraError),
		}
	}
	if res.ExitCode != 0 {
		return models.FixResult{
			Strategy: strategy,
			Message:  fmt.Sprintf("%q failed: %s", strategy.Command, strings.TrimSpace(res.Stderr)),
		}
	}

	return models.FixResult{
		Success:     true,
		Strategy:    strategy,
		Message:     "Successfully ran " + strategy.Command,
		ChangesMade: []string{change},
		Rollback:    map[string]string{"command": undo},
	}
}
