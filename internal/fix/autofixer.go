package fix

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ShayCichocki/bringup/internal/config"
	"github.com/ShayCichocki/bringup/internal/exec"
	"github.com/ShayCichocki/bringup/pkg/models"
)

// ErrNoCollaborator is returned when a fix needs generated code but no
// collaborator client is configured. The attempt still counts against the
// error's budget.
var ErrNoCollaborator = errors.New("no code-generation collaborator configured")

// FixGenerator produces candidate fixes for errors no deterministic fixer
// handles. The api package implements it against the Anthropic API.
type FixGenerator interface {
	GenerateFix(ctx context.Context, err models.DetectedError, projectRoot string) (*models.GeneratedFix, error)
}

// AutoFixer turns detected errors into applied repairs: deterministic
// strategies first, the collaborator for everything else.
type AutoFixer struct {
	Registry  *Registry
	Runner    exec.CommandRunner
	Generator FixGenerator
	Settings  config.FixSettings
}

// NewAutoFixer creates an AutoFixer. generator may be nil; collaborator
// fixes then fail with ErrNoCollaborator.
func NewAutoFixer(runner exec.CommandRunner, generator FixGenerator, settings config.FixSettings) *AutoFixer {
	return &AutoFixer{
		Registry:  NewRegistry(),
		Runner:    runner,
		Generator: generator,
		Settings:  settings,
	}
}

// Analyze produces a read on the error before any fix is generated.
func (a *AutoFixer) Analyze(err models.DetectedError) models.AnalysisResult {
	analysis := models.AnalysisResult{
		RootCause: fmt.Sprintf("%s error: %s", err.Category, err.Message),
	}
	if err.FilePath != "" {
		analysis.AffectedFiles = []string{err.FilePath}
	}

	switch {
	case CanAutoFix(err):
		analysis.Confidence = 0.9
	case RequiresCollaborator(err):
		analysis.NeedsCollaborator = true
		analysis.Confidence = 0.6
	default:
		analysis.NeedsCollaborator = true
		analysis.Confidence = 0.3
	}
	return analysis
}

// GenerateFix builds a candidate fix for the error. Deterministic repairs
// come back as command fixes with their strategy's static confidence;
// everything else goes to the collaborator.
func (a *AutoFixer) GenerateFix(ctx context.Context, err models.DetectedError, root string) (*models.GeneratedFix, error) {
	if f := a.deterministicFix(err, root); f != nil {
		return f, nil
	}

	if a.Generator == nil {
		return nil, ErrNoCollaborator
	}
	return a.Generator.GenerateFix(ctx, err, root)
}

func (a *AutoFixer) deterministicFix(err models.DetectedError, root string) *models.GeneratedFix {
	switch err.Category {
	case models.CategoryImport:
		if pkg := ExtractMissingNPMPackage(err); pkg != "" {
			return &models.GeneratedFix{
				Error:      err,
				Type:       models.FixDependency,
				Confidence: 0.85,
				Commands:   []string{"npm install " + pkg},
				Rationale:  "Install the missing npm package " + pkg,
			}
		}
		if pkg := ExtractMissingPythonModule(err); pkg != "" {
			return &models.GeneratedFix{
				Error:      err,
				Type:       models.FixDependency,
				Confidence: 0.85,
				Commands:   []string{"pip install " + pkg},
				Rationale:  "Install the missing Python module " + pkg,
			}
		}
		return a.manifestInstall(err, root)

	case models.CategoryDependency:
		return a.manifestInstall(err, root)

	case models.CategoryPortInUse:
		if port, ok := ExtractPort(err); ok {
			return &models.GeneratedFix{
				Error:      err,
				Type:       models.FixPort,
				Confidence: 0.9,
				Commands:   []string{fmt.Sprintf("lsof -ti :%d | xargs -r kill -9", port)},
				Rationale:  fmt.Sprintf("Free port %d by killing its holder", port),
			}
		}

	case models.CategoryPermission:
		if path := ExtractPermissionPath(err); path != "" {
			mode := "644"
			if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
				mode = "755"
			}
			return &models.GeneratedFix{
				Error:      err,
				Type:       models.FixPermission,
				Confidence: 0.8,
				Commands:   []string{fmt.Sprintf("chmod %s %s", mode, path)},
				Rationale:  "Restore readable permissions on " + path,
			}
		}

	case models.CategoryConfiguration, models.CategoryFileNotFound:
		if strings.Contains(strings.ToLower(err.Message), ".env") {
			for _, template := range envTemplates {
				if _, statErr := os.Stat(filepath.Join(root, template)); statErr == nil {
					return &models.GeneratedFix{
						Error:      err,
						Type:       models.FixConfiguration,
						Confidence: 0.9,
						Commands:   []string{fmt.Sprintf("cp %s .env", template)},
						Rationale:  "Create .env from " + template,
					}
				}
			}
		}
	}

	return nil
}

// manifestInstall picks the whole-manifest install for the project's
// ecosystem, when one is identifiable.
func (a *AutoFixer) manifestInstall(err models.DetectedError, root string) *models.GeneratedFix {
	if _, statErr := os.Stat(filepath.Join(root, "package.json")); statErr == nil {
		return &models.GeneratedFix{
			Error:      err,
			Type:       models.FixDependency,
			Confidence: 0.9,
			Commands:   []string{"npm install"},
			Rationale:  "Install all packages from package.json",
		}
	}
	if _, statErr := os.Stat(filepath.Join(root, "requirements.txt")); statErr == nil {
		return &models.GeneratedFix{
			Error:      err,
			Type:       models.FixDependency,
			Confidence: 0.9,
			Commands:   []string{"pip install -r requirements.txt"},
			Rationale:  "Install all modules from requirements.txt",
		}
	}
	return nil
}

// destructiveMarkers flag commands that delete or irreversibly rewrite
// state.
var destructiveMarkers = []string{"rm -rf", "rm -f", "git reset --hard", "git clean", "drop table", "truncate "}

func isDestructive(fix *models.GeneratedFix) bool {
	for _, cmd := range fix.Commands {
		lower := strings.ToLower(cmd)
		for _, marker := range destructiveMarkers {
			if strings.Contains(lower, marker) {
				return true
			}
		}
	}
	return false
}

// ApplyFix applies a candidate fix: file changes first (with backups when
// enabled), then commands. Destructive fixes are rejected outright unless
// allowed by settings.
func (a *AutoFixer) ApplyFix(ctx context.Context, fix *models.GeneratedFix, root string) models.FixResult {
	if fix == nil {
		return models.FixResult{Message: "no fix to apply"}
	}
	if !a.Settings.AllowDestructive && isDestructive(fix) {
		return models.FixResult{
			Message: "fix rejected: destructive commands are disabled (fixes.allow_destructive)",
		}
	}

	result := models.FixResult{Rollback: map[string]string{}}

	if len(fix.FileChanges) > 0 && a.Settings.AutoBackup {
		paths := make([]string, 0, len(fix.FileChanges))
		for rel := range fix.FileChanges {
			paths = append(paths, rel)
		}
		backupDir, err := NewBackupManager(root).Snapshot(paths)
		if err != nil {
			return models.FixResult{Message: fmt.Sprintf("backup failed, fix not applied: %v", err)}
		}
		result.Rollback["backup_dir"] = backupDir
	}

	for rel, content := range fix.FileChanges {
		dst := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			result.Message = fmt.Sprintf("creating directory for %s: %v", rel, err)
			return result
		}
		if err := os.WriteFile(dst, []byte(content), 0o644); err != nil {
			result.Message = fmt.Sprintf("writing %s: %v", rel, err)
			return result
		}
		result.ChangesMade = append(result.ChangesMade, "Rewrote "+rel)
	}

	for _, cmd := range fix.Commands {
		res := a.Runner.Run(ctx, exec.Command{Command: cmd, Dir: root, Timeout: installTimeout})
		if res.InfraError != nil {
			result.Message = fmt.Sprintf("command %q could not run: %v", cmd, res.InfraError)
			return result
		}
		if res.ExitCode != 0 {
			result.Message = fmt.Sprintf("command %q exited %d: %s", cmd, res.ExitCode, strings.TrimSpace(res.Stderr))
			return result
		}
		result.ChangesMade = append(result.ChangesMade, "Ran "+cmd)
	}

	result.Success = true
	result.Message = "fix applied"
	if len(result.Rollback) == 0 {
		result.Rollback = nil
	}
	return result
}
