// Package fix holds the deterministic repair strategies, the fixers that
// apply them, and the AutoFixer that escalates to the code-generation
// collaborator when no deterministic repair exists.
package fix

import (
	"sort"

	"github.com/ShayCichocki/bringup/pkg/models"
)

// Registry holds the available fix strategies. Strategies carry static
// confidence scores; the registry only filters and orders them.
type Registry struct {
	strategies []models.FixStrategy
}

// NewRegistry creates a Registry preloaded with the built-in strategies.
func NewRegistry() *Registry {
	r := &Registry{}
	for _, s := range defaultStrategies() {
		r.Register(s)
	}
	return r
}

// Register appends a strategy.
func (r *Registry) Register(s models.FixStrategy) {
	r.strategies = append(r.strategies, s)
}

// StrategiesFor returns the strategies applicable to the error's category
// with confidence at or above minConfidence, ordered by descending
// confidence. Registration order breaks ties.
func (r *Registry) StrategiesFor(err models.DetectedError, minConfidence float64) []models.FixStrategy {
	var out []models.FixStrategy
	for _, s := range r.strategies {
		if s.AppliesTo(err.Category) && s.Confidence >= minConfidence {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}

// ByType returns all strategies of one fix type, in registration order.
func (r *Registry) ByType(t models.FixType) []models.FixStrategy {
	var out []models.FixStrategy
	for _, s := range r.strategies {
		if s.Type == t {
			out = append(out, s)
		}
	}
	return out
}

func defaultStrategies() []models.FixStrategy {
	return []models.FixStrategy{
		{
			Name:            "npm_install",
			Description:     "Install missing npm packages",
			Type:            models.FixDependency,
			Categories:      []models.ErrorCategory{models.CategoryDependency, models.CategoryImport},
			Confidence:      0.9,
			Command:         "npm install",
			RequiresRestart: true,
			Safe:            true,
		},
		{
			Name:            "npm_clean_install",
			Description:     "Clean install npm packages",
			Type:            models.FixDependency,
			Categories:      []models.ErrorCategory{models.CategoryDependency},
			Confidence:      0.8,
			Command:         "rm -rf node_modules package-lock.json && npm install",
			RequiresRestart: true,
			// Deletes files, so it needs the destructive-fix gate.
			Safe: false,
		},
		{
			Name:            "pip_install_requirements",
			Description:     "Install Python requirements",
			Type:            models.FixDependency,
			Categories:      []models.ErrorCategory{models.CategoryDependency, models.CategoryImport},
			Confidence:      0.9,
			Command:         "pip install -r requirements.txt",
			RequiresRestart: true,
			Safe:            true,
		},
		{
			Name:            "pip_install_module",
			Description:     "Install specific Python module",
			Type:            models.FixDependency,
			Categories:      []models.ErrorCategory{models.CategoryImport},
			Confidence:      0.85,
			RequiresRestart: true,
			Safe:            true,
		},
		{
			Name:            "npm_install_module",
			Description:     "Install specific npm package",
			Type:            models.FixDependency,
			Categories:      []models.ErrorCategory{models.CategoryImport},
			Confidence:      0.85,
			RequiresRestart: true,
			Safe:            true,
		},
		{
			Name:            "kill_port_process",
			Description:     "Kill process using the port",
			Type:            models.FixPort,
			Categories:      []models.ErrorCategory{models.CategoryPortInUse},
			Confidence:      0.9,
			RequiresRestart: true,
			Safe:            true,
		},
		{
			Name:            "change_port",
			Description:     "Change application port",
			Type:            models.FixPort,
			Categories:      []models.ErrorCategory{models.CategoryPortInUse},
			Confidence:      0.7,
			RequiresRestart: true,
			Safe:            true,
		},
		{
			Name:        "fix_file_permissions",
			Description: "Fix file permissions",
			Type:        models.FixPermission,
			Categories:  []models.ErrorCategory{models.CategoryPermission},
			Confidence:  0.8,
			Safe:        true,
		},
		{
			Name:        "fix_directory_permissions",
			Description: "Fix directory permissions",
			Type:        models.FixPermission,
			Categories:  []models.ErrorCategory{models.CategoryPermission},
			Confidence:  0.8,
			Safe:        true,
		},
		{
			Name:        "create_env_file",
			Description: "Create .env file from template",
			Type:        models.FixConfiguration,
			Categories:  []models.ErrorCategory{models.CategoryConfiguration, models.CategoryFileNotFound},
			Confidence:  0.9,
			Safe:        true,
		},
		{
			Name:        "fix_config_syntax",
			Description: "Fix configuration file syntax",
			Type:        models.FixConfiguration,
			Categories:  []models.ErrorCategory{models.CategoryConfiguration, models.CategorySyntax},
			Confidence:  0.6,
			Safe:        true,
		},
		{
			Name:        "fix_relative_import",
			Description: "Fix relative import path",
			Type:        models.FixImport,
			Categories:  []models.ErrorCategory{models.CategoryImport},
			Confidence:  0.7,
			Safe:        true,
		},
		{
			Name:        "add_missing_import",
			Description: "Add missing import statement",
			Type:        models.FixImport,
			Categories:  []models.ErrorCategory{models.CategoryImport},
			Confidence:  0.75,
			Safe:        true,
		},
		{
			Name:        "fix_indentation",
			Description: "Fix Python indentation",
			Type:        models.FixSyntax,
			Categories:  []models.ErrorCategory{models.CategorySyntax},
			Confidence:  0.7,
			Safe:        true,
		},
		{
			Name:        "fix_bracket_mismatch",
			Description: "Fix bracket/parenthesis mismatch",
			Type:        models.FixSyntax,
			Categories:  []models.ErrorCategory{models.CategorySyntax},
			Confidence:  0.6,
			Safe:        true,
		},
		{
			Name:        "fix_missing_semicolon",
			Description: "Add missing semicolons",
			Type:        models.FixSyntax,
			Categories:  []models.ErrorCategory{models.CategorySyntax},
			Confidence:  0.8,
			Safe:        true,
		},
	}
}
