package fix

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/ShayCichocki/bringup/pkg/models"
)

var permPathRes = []*regexp.Regexp{
	regexp.MustCompile(`EACCES:.*['"]([^'"]+)['"]`),
	regexp.MustCompile(`Permission denied: ['"]?([^'"]+)['"]?`),
	regexp.MustCompile(`PermissionError:.*['"]([^'"]+)['"]`),
}

// ExtractPermissionPath pulls the offending path from a permission error.
func ExtractPermissionPath(err models.DetectedError) string {
	for _, re := range permPathRes {
		if m := re.FindStringSubmatch(err.Message); m != nil {
			return m[1]
		}
	}
	return ""
}

// FixFilePermissions chmods a file, recording the prior mode for rollback.
// A zero mode defaults to 0644.
func FixFilePermissions(path string, mode os.FileMode) models.FixResult {
	if mode == 0 {
		mode = 0o644
	}
	return chmodWithRollback(path, mode, false)
}

// FixDirectoryPermissions chmods a directory, recording the prior mode for
// rollback. A zero mode defaults to 0755.
func FixDirectoryPermissions(path string, mode os.FileMode) models.FixResult {
	if mode == 0 {
		mode = 0o755
	}
	return chmodWithRollback(path, mode, true)
}

func chmodWithRollback(path string, mode os.FileMode, wantDir bool) models.FixResult {
	name := "fix_file_permissions"
	kind := "file"
	if wantDir {
		name = "fix_directory_permissions"
		kind = "directory"
	}
	strategy := &models.FixStrategy{
		Name:        name,
		Description: fmt.Sprintf("Fix permissions on %s", path),
		Type:        models.FixPermission,
		Categories:  []models.ErrorCategory{models.CategoryPermission},
		Confidence:  0.8,
	}

	info, err := os.Stat(path)
	if err != nil {
		return models.FixResult{
			Strategy: strategy,
			Message:  fmt.Sprintf("%s not found: %s", kind, path),
		}
	}
	if wantDir != info.IsDir() {
		return models.FixResult{
			Strategy: strategy,
			Message:  fmt.Sprintf("%s is not a %s", path, kind),
		}
	}

	oldMode := info.Mode().Perm()
	if err := os.Chmod(path, mode); err != nil {
		return models.FixResult{
			Strategy: strategy,
			Message:  fmt.Sprintf("Error fixing permissions: %v", err),
		}
	}

	return models.FixResult{
		Success:     true,
		Strategy:    strategy,
		Message:     fmt.Sprintf("Changed permissions on %s", path),
		ChangesMade: []string{fmt.Sprintf("chmod %o %s", mode, path)},
		Rollback: map[string]string{
			"path":     path,
			"old_mode": strconv.FormatUint(uint64(oldMode), 8),
		},
	}
}

// RollbackPermissions restores a mode recorded by a prior permission fix.
func RollbackPermissions(rollback map[string]string) error {
	path := rollback["path"]
	modeStr := rollback["old_mode"]
	if path == "" || modeStr == "" {
		return fmt.Errorf("incomplete permission rollback info")
	}
	mode, err := strconv.ParseUint(modeStr, 8, 32)
	if err != nil {
		return fmt.Errorf("parsing recorded mode %q: %w", modeStr, err)
	}
	return os.Chmod(path, os.FileMode(mode))
}
