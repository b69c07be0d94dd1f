package fix

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/ShayCichocki/bringup/pkg/models"
)

// envTemplates lists the template files tried, in order, when .env is
// missing.
var envTemplates = []string{".env.example", ".env.sample", ".env.template", "env.example"}

// CreateEnvFromTemplate materializes .env from the first template present
// in the project root. Rollback removes the created file.
func CreateEnvFromTemplate(root string) models.FixResult {
	strategy := &models.FixStrategy{
		Name:        "create_env_file",
		Description: "Create .env file from template",
		Type:        models.FixConfiguration,
		Categories:  []models.ErrorCategory{models.CategoryConfiguration, models.CategoryFileNotFound},
		Confidence:  0.9,
	}

	envPath := filepath.Join(root, ".env")
	if _, err := os.Stat(envPath); err == nil {
		return models.FixResult{
			Strategy: strategy,
			Message:  ".env file already exists",
		}
	}

	for _, template := range envTemplates {
		data, err := os.ReadFile(filepath.Join(root, template))
		if err != nil {
			continue
		}
		if err := os.WriteFile(envPath, data, 0o644); err != nil {
			return models.FixResult{
				Strategy: strategy,
				Message:  fmt.Sprintf("Error copying %s: %v", template, err),
			}
		}
		return models.FixResult{
			Success:     true,
			Strategy:    strategy,
			Message:     "Created .env from " + template,
			ChangesMade: []string{fmt.Sprintf("Copied %s to .env", template)},
			Rollback:    map[string]string{"created_file": envPath},
		}
	}

	return models.FixResult{
		Strategy: strategy,
		Message:  "No .env template file found",
	}
}

// RollbackCreatedFile removes a file recorded by a creation fix.
func RollbackCreatedFile(rollback map[string]string) error {
	path := rollback["created_file"]
	if path == "" {
		return fmt.Errorf("no created file recorded")
	}
	return os.Remove(path)
}

var envVarRes = []*regexp.Regexp{
	regexp.MustCompile(`Environment variable ['"]?(\w+)['"]? not set`),
	regexp.MustCompile(`Missing required.*['"]?(\w+)['"]?`),
	regexp.MustCompile(`(\w+_\w+) is not defined`),
	regexp.MustCompile(`process\.env\.(\w+)`),
}

// ExtractMissingEnvVar pulls the missing variable name from a
// configuration error.
func ExtractMissingEnvVar(err models.DetectedError) string {
	for _, re := range envVarRes {
		if m := re.FindStringSubmatch(err.Message); m != nil {
			return m[1]
		}
	}
	return ""
}
